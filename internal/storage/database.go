package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ananth-NQI/orderbot/internal/apperr"
	"github.com/Ananth-NQI/orderbot/internal/models"
)

// DatabaseStore archives orders in PostgreSQL through gorm.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore wraps an open gorm connection.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (d *DatabaseStore) SaveOrder(ctx context.Context, order *models.Order) error {
	if order.Reference == "" {
		return fmt.Errorf("save order: %w: empty reference", apperr.ErrInvalidPayload)
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Order
		if err := tx.Where("reference = ?", order.Reference).Limit(1).Find(&existing).Error; err != nil {
			return fmt.Errorf("check order %s: %w", order.Reference, err)
		}
		if existing.ID == 0 {
			if err := tx.Create(order).Error; err != nil {
				return fmt.Errorf("create order %s: %w", order.Reference, err)
			}
			return nil
		}

		// The order was edited after an earlier partial submission.
		if err := tx.Unscoped().Where("order_id = ?", existing.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("replace items of order %s: %w", order.Reference, err)
		}
		order.ID = existing.ID
		order.CreatedAt = existing.CreatedAt
		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return fmt.Errorf("update order %s: %w", order.Reference, err)
		}
		if len(order.Items) == 0 {
			return nil
		}
		for i := range order.Items {
			order.Items[i].ID = 0
			order.Items[i].OrderID = existing.ID
		}
		if err := tx.Create(&order.Items).Error; err != nil {
			return fmt.Errorf("create items of order %s: %w", order.Reference, err)
		}
		return nil
	})
}

func (d *DatabaseStore) GetOrder(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	err := d.db.WithContext(ctx).Preload("Items").Where("reference = ?", reference).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %s: %w", reference, apperr.ErrOrderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", reference, err)
	}
	return &order, nil
}

func (d *DatabaseStore) ListOrders(ctx context.Context, phone string, limit int) ([]*models.Order, error) {
	q := d.db.WithContext(ctx).Preload("Items").Order("id DESC")
	if phone != "" {
		q = q.Where("contact_phone = ?", phone)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var orders []*models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (d *DatabaseStore) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}
