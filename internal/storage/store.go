package storage

import (
	"context"

	"github.com/Ananth-NQI/orderbot/internal/models"
)

// OrderStore archives confirmed orders.
type OrderStore interface {
	// SaveOrder stores order, replacing the fields and items of an existing
	// order with the same reference. Saving the same order twice leaves one
	// record.
	SaveOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, reference string) (*models.Order, error)
	// ListOrders returns the newest orders first; phone filters by contact
	// phone when non-empty.
	ListOrders(ctx context.Context, phone string, limit int) ([]*models.Order, error)
	CountOrders(ctx context.Context) (int64, error)
}
