package handlers

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"autosalon/internal/config"
	"autosalon/internal/domain"
	applog "autosalon/internal/log"
)

// NewApp builds the fiber application: middleware chain, API routes,
// health and metrics endpoints, and the JSON 404 fallback.
func NewApp(cfg config.Config, deps *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "autosalon",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
	})

	accessLog := deps.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		Output: accessLog,
	}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(deps.Metrics.Middleware())
	app.Use(StoreDeadline(cfg.StoreTimeout))

	requireToken := RequireToken(deps.Auth, deps.Metrics)
	adminOnly := RequireRole(domain.RoleAdmin)
	authH := deps.AuthHandler
	carH := deps.CarHandler
	custH := deps.CustomerHandler

	// ---------- Auth ----------
	api := app.Group("/api")
	api.Post("/register", authH.Register)
	api.Post("/login", limiter.New(limiter.Config{
		Max:        cfg.LoginRateMax,
		Expiration: cfg.LoginRateWindow,
		LimitReached: func(c *fiber.Ctx) error {
			c.Status(fiber.StatusTooManyRequests)
			applog.Security(c, "rate.login.hit", nil)
			deps.Metrics.AuthEvent("login", "rate_limited")
			return c.JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	api.Get("/user", requireToken, authH.Me)

	// ---------- Cars: public reads, admin writes ----------
	api.Get("/cars", carH.List)
	api.Get("/cars/:id", carH.Get)
	api.Post("/cars", requireToken, adminOnly, carH.Create)
	api.Put("/cars/:id", requireToken, adminOnly, carH.Update)
	api.Delete("/cars/:id", requireToken, adminOnly, carH.Delete)

	// ---------- Customers: authenticated reads, admin writes ----------
	api.Get("/customers", requireToken, custH.List)
	api.Get("/customers/:id", requireToken, custH.Get)
	api.Post("/customers", requireToken, adminOnly, custH.Create)
	api.Put("/customers/:id", requireToken, adminOnly, custH.Update)
	api.Delete("/customers/:id", requireToken, adminOnly, custH.Delete)

	// Health, metrics & 404
	app.Get("/healthz", deps.HealthHandler.Check)
	app.Get("/metrics", deps.Metrics.Handler())
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found"})
	})

	return app
}

// StoreDeadline bounds every downstream store call of a request by d.
func StoreDeadline(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// ErrorHandler renders errors that escape handlers, including recovered
// panics, as JSON. 5xx details stay in the log.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		c.Status(code)
		applog.Error(c, "server.error", err, nil)
		return c.JSON(fiber.Map{"error": "Something went wrong. Please try again."})
	}
	return c.Status(code).JSON(fiber.Map{"error": fe.Message})
}
