package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/cachestore"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/textanalysis"
)

const siteScaleCacheEntries = 1024

func main() {
	// Structured logging (JSON to stdout)
	stdout := logging.Setup(os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, pgLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, logging.DefaultRetention, cleanupDone)

	// Moderation engine; missing tables or columns degrade it instead of
	// failing requests
	caps := database.ProbeCapabilities(database.DB)
	reports := repository.NewReportRepository(database.DB, caps)
	profiles := repository.NewProfileRepository(database.DB, caps)
	audit := repository.NewAuditRepository(database.DB, caps)
	engine := moderation.NewEngine(cfg.Moderation, moderation.Deps{
		Caps:     caps,
		Reports:  reports,
		Scores:   repository.NewScoreRepository(database.DB, caps),
		Profiles: profiles,
		Users:    repository.NewUserRepository(database.DB, caps),
		Activity: repository.NewActivityRepository(database.DB, caps),
		Content:  repository.NewContentRepository(database.DB, caps, cfg.SiteURL),
		Audit:    audit,
		Cache:    cachestore.New(cfg.RedisURL, siteScaleCacheEntries, cfg.Moderation.SiteScale.CacheTTL()),
		Logger:   slog.Default(),
	})
	analyzer := textanalysis.New(cfg.Moderation.Text)

	// Services
	authService := services.NewAuthService(database.DB, cfg)
	contentService := services.NewContentService(database.DB, analyzer)
	moderationService := services.NewModerationService(database.DB, engine, reports, profiles, audit)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(caps, database.Ping)
	contentHandler := handlers.NewContentHandler(contentService)
	moderationHandler := handlers.NewModerationHandler(moderationService, contentService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB, authHandler, healthHandler, contentHandler, moderationHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
