package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/Ananth-NQI/orderbot/database"
	"github.com/Ananth-NQI/orderbot/internal/apperr"
	"github.com/Ananth-NQI/orderbot/internal/catalog"
	"github.com/Ananth-NQI/orderbot/internal/config"
	"github.com/Ananth-NQI/orderbot/internal/delivery"
	"github.com/Ananth-NQI/orderbot/internal/flow"
	"github.com/Ananth-NQI/orderbot/internal/handlers"
	"github.com/Ananth-NQI/orderbot/internal/jobs"
	"github.com/Ananth-NQI/orderbot/internal/log"
	"github.com/Ananth-NQI/orderbot/internal/metrics"
	"github.com/Ananth-NQI/orderbot/internal/routes"
	"github.com/Ananth-NQI/orderbot/internal/services"
	"github.com/Ananth-NQI/orderbot/internal/storage"
	"github.com/Ananth-NQI/orderbot/internal/utils"
)

const (
	serviceName     = "orderbot"
	version         = "1.0.0"
	purgeInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		logger := log.Base()
		logger.Fatal().Err(err).Msg("orderbot stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log.Configure(log.Config{Level: cfg.LogLevel, Service: serviceName})
	logger := log.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		if cat, err = catalog.Load(cfg.CatalogFile); err != nil {
			return err
		}
	}

	policy, err := delivery.NewPolicy(cfg.BusinessTimezone)
	if err != nil {
		return err
	}

	machine := &flow.Machine{
		Catalog: cat,
		Dates:   policy,
		Now:     time.Now,
		NewRef: func() string {
			return utils.GenerateSecureID("PED", time.Now().In(policy.Location))
		},
	}

	// Storage
	var store storage.OrderStore
	storageType := "postgres"
	if cfg.UseMemoryStore {
		logger.Warn().Msg("using in-memory order storage (not for production)")
		store = storage.NewMemoryStore()
		storageType = "memory"
	} else {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		store = storage.NewDatabaseStore(db)
	}

	// Order sinks: archive first so a sheet failure never loses the order.
	sinks := services.MultiSink{services.NewStoreSink(store)}
	if cfg.SheetWebhookURL != "" {
		sinks = append(sinks, services.NewHTTPSink(cfg.SheetWebhookURL, cfg.SinkTimeout))
	} else {
		logger.Warn().Msg("SHEET_WEBHOOK_URL not set, orders are only archived")
	}

	// Messaging transport
	var sender services.Sender
	switch cfg.Transport {
	case config.TransportTwilio:
		sender, err = services.NewTwilioService(cfg.Twilio)
	default:
		sender, err = services.NewCloudAPIClient(cfg.Meta)
	}
	if err != nil {
		return fmt.Errorf("init %s transport: %w", cfg.Transport, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Deduplication
	var dedup services.Deduplicator
	if cfg.RedisURL != "" {
		redisDedup, err := services.NewRedisDeduplicator(cfg.RedisURL, cfg.DedupWindow)
		if err != nil {
			return err
		}
		defer redisDedup.Close()
		dedup = redisDedup
	} else {
		memDedup := services.NewMemoryDeduplicator(cfg.DedupWindow)
		dedup = memDedup
		job := jobs.NewMaintenanceJob(memDedup, purgeInterval)
		g.Go(func() error { return job.Run(gctx) })
	}

	conversation := services.NewConversationService(services.ConversationOptions{
		Machine:     machine,
		Sender:      sender,
		Sink:        sinks,
		Dedup:       dedup,
		IdleTimeout: cfg.SessionIdleTimeout,
		SinkTimeout: cfg.SinkTimeout,
	})
	defer conversation.Close()

	sessions := conversation.Sessions()
	if err := metrics.RegisterActiveSessions(prometheus.DefaultRegisterer, func() float64 {
		return float64(sessions.Len())
	}); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      fmt.Sprintf("Order Bot v%s", version),
		ErrorHandler: errorHandler,
		Immutable:    true,
	})

	// Middleware
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	routes.SetupRoutes(app, cfg, routes.Handlers{
		WhatsApp: handlers.NewWhatsAppHandler(conversation, cfg.VerifyToken),
		Orders:   handlers.NewOrderHandler(store),
		Health:   handlers.NewHealthHandler(version, serviceName, cfg.Transport, sessions, store),
	})

	g.Go(func() error {
		logger.Info().
			Str("port", cfg.Port).
			Str("environment", cfg.Environment).
			Str("transport", cfg.Transport).
			Str("storage", storageType).
			Str("business", cat.Business).
			Bool("redis_dedup", cfg.RedisURL != "").
			Msg("orderbot starting")
		return app.Listen(":" + cfg.Port)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("gracefully shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// errorHandler renders errors as {"error": ...} JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := apperr.HTTPStatus(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
