package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ananth-NQI/orderbot/internal/config"
	"github.com/Ananth-NQI/orderbot/internal/handlers"
	"github.com/Ananth-NQI/orderbot/internal/log"
	"github.com/Ananth-NQI/orderbot/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by SetupRoutes.
type Handlers struct {
	WhatsApp *handlers.WhatsAppHandler
	Orders   *handlers.OrderHandler
	Health   *handlers.HealthHandler
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg *config.Config, h Handlers) {
	logger := log.WithComponent("routes")

	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Orders carry customer names and phone numbers.
	switch {
	case cfg.AdminToken != "":
		orders := app.Group("/api/orders", middleware.RequireAdminToken(cfg.AdminToken))
		orders.Get("/", h.Orders.ListOrders)
		orders.Get("/:reference", h.Orders.GetOrder)
	case cfg.IsDevelopment():
		orders := app.Group("/api/orders")
		orders.Get("/", h.Orders.ListOrders)
		orders.Get("/:reference", h.Orders.GetOrder)
	default:
		logger.Warn().Msg("ADMIN_TOKEN not set, order API disabled")
	}

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")
	webhooks.Get("/", h.WhatsApp.Verify)

	if cfg.IsDevelopment() || cfg.DisableWebhookValidation {
		// ngrok and local tools cannot sign requests
		webhooks.Post("/", h.WhatsApp.HandleMetaWebhook)
		webhooks.Post("/twilio", h.WhatsApp.HandleTwilioWebhook)
		logger.Warn().Str("environment", cfg.Environment).Msg("webhook signature validation disabled")
	} else {
		webhooks.Post("/", middleware.ValidateMetaSignature(cfg.Meta.AppSecret), h.WhatsApp.HandleMetaWebhook)
		webhooks.Post("/twilio", middleware.ValidateTwilioSignature(cfg.Twilio.AuthToken), h.WhatsApp.HandleTwilioWebhook)
	}

	// ========== TEST ROUTES (Development Only) ==========
	if cfg.IsDevelopment() {
		app.Post("/test/message", h.WhatsApp.HandleTestWebhook)
	}
}
