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

	applog "storefront/internal/log"
)

type Options struct {
	// LimiterStorage backs the rate limiters; nil keeps counters in memory.
	LimiterStorage fiber.Storage
	GlobalMax      int // requests per minute per IP, default 60
	LoginMax       int // login attempts per 10 minutes per IP, default 5
	AccessLog      bool
}

// NewApp builds the fiber application with middleware and every route.
func NewApp(d *Deps, opts Options) *fiber.App {
	if opts.GlobalMax <= 0 {
		opts.GlobalMax = 60
	}
	if opts.LoginMax <= 0 {
		opts.LoginMax = 5
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
		AppName:      "storefront",
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(applog.Timing())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{
		Max:        opts.GlobalMax,
		Expiration: time.Minute,
		Storage:    opts.LimiterStorage,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))
	app.Use(Authenticate(d.Auth))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "message": "storefront is running"})
	})

	api := app.Group("/api")

	// Auth routes (login throttled)
	auth := api.Group("/auth")
	auth.Post("/register", d.AuthHandler.Register)
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        opts.LoginMax,
		Expiration: 10 * time.Minute,
		Storage:    opts.LimiterStorage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	auth.Post("/logout", RequireUser(d.Auth), d.AuthHandler.Logout)
	api.Get("/me", RequireUser(d.Auth), d.AuthHandler.Me)

	// Catalog
	products := api.Group("/products")
	products.Get("/", d.ProductHandler.List)
	products.Get("/availability", d.InventoryHandler.Check)
	products.Get("/:id", d.ProductHandler.Detail)
	products.Post("/", RequireAdmin(d.Auth), d.AdminHandler.CreateProduct)
	products.Put("/:id", RequireAdmin(d.Auth), d.AdminHandler.UpdateProduct)
	products.Delete("/:id", RequireAdmin(d.Auth), d.AdminHandler.DeleteProduct)

	// Orders
	orders := api.Group("/orders", RequireUser(d.Auth))
	orders.Post("/", d.OrderHandler.Place)
	orders.Get("/me", d.OrderHandler.History)
	orders.Get("/", RequireAdmin(d.Auth), d.AdminHandler.OrdersPage)
	orders.Get("/:id", d.OrderHandler.View)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	})
	return app
}
