package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCounter reports the number of live dialog sessions.
type SessionCounter interface {
	Len() int
}

// OrderCounter reports the number of archived orders.
type OrderCounter interface {
	CountOrders(ctx context.Context) (int64, error)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	Version   string
	Service   string
	Transport string
	sessions  SessionCounter
	orders    OrderCounter
	started   time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, service, transport string, sessions SessionCounter, orders OrderCounter) *HealthHandler {
	return &HealthHandler{
		Version:   version,
		Service:   service,
		Transport: transport,
		sessions:  sessions,
		orders:    orders,
		started:   time.Now(),
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := fiber.Map{
		"status":          "OK",
		"service":         h.Service,
		"version":         h.Version,
		"transport":       h.Transport,
		"active_sessions": h.sessions.Len(),
		"uptime":          time.Since(h.started).Round(time.Second).String(),
	}

	if h.orders != nil {
		count, err := h.orders.CountOrders(c.UserContext())
		if err != nil {
			status["status"] = "DEGRADED"
			status["store_error"] = err.Error()
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		status["orders"] = count
	}

	return c.JSON(status)
}

// Root describes the service and its endpoints.
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": h.Service + " is running",
		"version": h.Version,
		"endpoints": fiber.Map{
			"health":  "/health",
			"webhook": "/webhook",
			"twilio":  "/webhook/twilio",
			"orders":  "/api/orders",
			"metrics": "/metrics",
		},
	})
}
