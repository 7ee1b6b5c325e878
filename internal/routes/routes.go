package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	contentHandler *handlers.ContentHandler,
	moderationHandler *handlers.ModerationHandler,
) {
	// Prometheus scrape endpoint, outside the /api rate limit
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected routes (JWT required) - apply middleware to individual routes
	// so public routes stay untouched
	protected := middleware.JWTProtected(cfg)
	api.Post("/auth/logout", protected, authHandler.Logout)
	api.Delete("/auth/account", protected, authHandler.DeleteAccount)

	// Content
	api.Get("/posts/:ref", contentHandler.GetPost)
	api.Post("/posts", protected, contentHandler.CreatePost)
	api.Post("/posts/:ref/comments", protected, contentHandler.AddComment)
	api.Post("/posts/:ref/reviews", protected, contentHandler.AddReview)
	api.Post("/posts/:ref/vote", protected, contentHandler.Vote)
	api.Post("/posts/:ref/save", protected, contentHandler.ToggleSave)
	api.Post("/users/:id/follow", protected, contentHandler.ToggleFollow)

	// Moderation: reports may be anonymous
	api.Post("/reports", middleware.OptionalJWT(cfg), moderationHandler.CreateReport)
	api.Post("/moderation/analyze", moderationHandler.Analyze)

	api.Get("/blocks", protected, moderationHandler.ListBlocks)
	api.Post("/blocks", protected, moderationHandler.BlockUser)
	api.Delete("/blocks/:id", protected, moderationHandler.UnblockUser)

	// Moderator panel: JWT with a staff role, or the static admin token
	admin := api.Group("/admin/moderation", middleware.OptionalJWT(cfg), middleware.ModeratorRequired(db, cfg))
	admin.Get("/reports", moderationHandler.ListReports)
	admin.Post("/resolve", moderationHandler.ResolveReports)
	admin.Get("/scores/:type/:ref", moderationHandler.GetScore)
	admin.Get("/reporters/:id", moderationHandler.GetReporter)
	admin.Get("/logs", moderationHandler.ListLogs)
}
