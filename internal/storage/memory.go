package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Ananth-NQI/orderbot/internal/apperr"
	"github.com/Ananth-NQI/orderbot/internal/models"
)

// MemoryStore holds orders in memory, for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	orders  map[string]*models.Order
	counter uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]*models.Order),
	}
}

func (m *MemoryStore) SaveOrder(_ context.Context, order *models.Order) error {
	if order.Reference == "" {
		return fmt.Errorf("save order: %w: empty reference", apperr.ErrInvalidPayload)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *order
	if existing, ok := m.orders[order.Reference]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		m.counter++
		stored.ID = m.counter
	}
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	for i := range stored.Items {
		stored.Items[i].OrderID = stored.ID
	}
	m.orders[order.Reference] = &stored
	return nil
}

func (m *MemoryStore) GetOrder(_ context.Context, reference string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, exists := m.orders[reference]
	if !exists {
		return nil, fmt.Errorf("order %s: %w", reference, apperr.ErrOrderNotFound)
	}
	return order, nil
}

func (m *MemoryStore) ListOrders(_ context.Context, phone string, limit int) ([]*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var orders []*models.Order
	for _, o := range m.orders {
		if phone != "" && o.ContactPhone != phone {
			continue
		}
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })

	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (m *MemoryStore) CountOrders(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.orders)), nil
}
