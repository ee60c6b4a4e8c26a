package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"storelaunch/internal/config"
	"storelaunch/internal/domain"
	applog "storelaunch/internal/log"
)

const bodyLimit = 1 << 20 // 1 MiB

// NewApp builds the fiber app with middleware and every /api route.
func NewApp(cfg config.Config, deps *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "storelaunch",
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + sessionHeader,
	}))
	app.Use(Trace())
	app.Use(Identify(deps.Auth))
	if cfg.RateLimitPerMin > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitPerMin,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.global.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(errorBody{Error: "rate_limited", Message: "rate limit exceeded, retry soon"})
			},
		}))
	}

	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	authed := RequireUser()
	manager := RequireRole(domain.RoleStoreOwner, domain.RoleAdmin)

	// Auth (login throttled)
	ah := deps.AuthHandler
	api.Post("/auth/register", ah.Register)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(errorBody{Error: "rate_limited", Message: "Too many attempts. Please try again later."})
		},
	}), ah.Login)
	api.Post("/auth/logout", authed, ah.Logout)
	api.Get("/auth/me", authed, ah.Me)
	api.Patch("/auth/me", authed, ah.UpdateMe)
	api.Get("/customers/profile", authed, ah.Me)
	api.Patch("/customers/profile", authed, ah.UpdateMe)
	api.Put("/customers/profile", authed, ah.UpdateMe)

	// Stores
	sh := deps.StoreHandler
	api.Get("/stores/public/:slug", sh.Public)
	api.Get("/stores/my", manager, sh.Mine)
	api.Get("/stores/:id", manager, sh.Get)
	api.Put("/stores/:id", manager, sh.Update)
	api.Get("/stores/:id/shipping-options", manager, sh.ShippingOptions)
	api.Post("/stores/:id/shipping-options", manager, sh.CreateShippingOption)

	// Products
	ph := deps.ProductHandler
	api.Get("/products/store/:storeId", ph.Storefront)
	api.Get("/products/store/:storeId/categories", ph.Categories)
	api.Get("/products/manage/:storeId", manager, ph.Manage)
	api.Post("/products/manage/:storeId", manager, ph.Create)
	api.Get("/products/manage/:storeId/categories", manager, ph.ManageCategories)
	api.Post("/products/manage/:storeId/categories", manager, ph.CreateCategory)
	api.Get("/products/:id", ph.Detail)
	api.Put("/products/:id", manager, ph.Update)
	api.Delete("/products/:id", manager, ph.Delete)

	// Cart & checkout
	ch := deps.CartHandler
	api.Get("/cart/:storeId", ch.View)
	api.Post("/cart/:storeId/items", authed, ch.AddItem)
	api.Patch("/cart/:storeId/items/:itemId", authed, ch.SetItem)
	api.Delete("/cart/:storeId/items/:itemId", authed, ch.RemoveItem)
	api.Post("/cart/:storeId/checkout", authed, ch.PlaceOrder)

	// Orders
	oh := deps.OrderHandler
	api.Get("/orders/my", authed, oh.ListMine)
	api.Get("/orders/my/:id", authed, oh.GetMine)
	api.Post("/orders/my/:id/confirm-payment", authed, oh.ConfirmPayment)
	api.Get("/orders/store/:storeId", manager, oh.ListStore)
	api.Get("/orders/store/:storeId/:orderId", manager, oh.GetStore)
	api.Patch("/orders/store/:storeId/:orderId", manager, oh.UpdateStore)

	// Subscriptions
	sub := deps.SubscriptionHandler
	api.Get("/subscriptions/plans", sub.Plans)
	api.Get("/subscriptions/store/:storeId", manager, sub.Current)
	api.Post("/subscriptions/store/:storeId", manager, sub.Change)

	// Admin
	adm := deps.AdminHandler
	admin := api.Group("/admin", RequireRole(domain.RoleAdmin))
	admin.Get("/users", adm.Users)
	admin.Patch("/users/:id", adm.UpdateUser)
	admin.Get("/stores", adm.Stores)
	admin.Patch("/stores/:id/suspend", adm.SuspendStore)
	admin.Get("/audit-logs", adm.AuditLogs)
	admin.Get("/stats", adm.Stats)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(errorBody{Error: "not_found", Message: "route not found"})
	})
	return app
}
