package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/viralblueprint/backend/internal/apps"
	"github.com/viralblueprint/backend/internal/config"
	"github.com/viralblueprint/backend/internal/handlers"
	"github.com/viralblueprint/backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	billingHandler *handlers.BillingHandler,
	webhookHandler *handlers.WebhookHandler,
	plugins []apps.Plugin,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Plan catalog is public so the pricing page can render before login
	api.Get("/plans", billingHandler.ListPlans)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
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
	// so the public routes above stay public
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Billing (protected). Entitlement reads and direct actions both require
	// a logged-in user; access gating itself happens at the plugin group.
	billing := api.Group("/billing", middleware.JWTProtected(cfg))
	billing.Get("/entitlement", billingHandler.Entitlement)
	billing.Get("/subscription", billingHandler.CheckSubscription)
	billing.Get("/verify", billingHandler.VerifyPayment)
	billing.Post("/subscribe", billingHandler.Subscribe)
	billing.Post("/cancel", billingHandler.Cancel)
	billing.Post("/resume", billingHandler.Resume)
	billing.Post("/portal", billingHandler.PortalSession)

	// Webhooks — signature-verified payloads, no JWT
	webhooks := api.Group("/webhooks")
	webhooks.Post("/stripe", webhookHandler.HandleStripe)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))

	// Plugin routes - subscriber-only group, gated on the server-side
	// entitlement check rather than anything the client claims
	protected := api.Group("/p", middleware.JWTProtected(cfg), middleware.EntitlementRequired(db))
	for _, p := range plugins {
		p.RegisterRoutes(protected, db, cfg)
		// If the plugin also implements AdminPlugin, register admin routes
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin, db, cfg)
		}
	}
}
