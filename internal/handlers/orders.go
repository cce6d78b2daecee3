package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/orderbot/internal/apperr"
	"github.com/Ananth-NQI/orderbot/internal/storage"
)

const (
	defaultOrderLimit = 50
	maxOrderLimit     = 500
)

// OrderHandler serves the archived orders.
type OrderHandler struct {
	store storage.OrderStore
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(store storage.OrderStore) *OrderHandler {
	return &OrderHandler{
		store: store,
	}
}

// ListOrders returns the newest orders, optionally filtered by contact phone.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultOrderLimit)
	if limit <= 0 || limit > maxOrderLimit {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 500",
		})
	}

	orders, err := h.store.ListOrders(c.UserContext(), c.Query("phone"), limit)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{
			"error": "Failed to list orders",
		})
	}

	return c.JSON(fiber.Map{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder returns one order by reference.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.store.GetOrder(c.UserContext(), c.Params("reference"))
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(order)
}
