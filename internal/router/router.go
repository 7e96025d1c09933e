package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/taskboard-api/internal/config"
	"github.com/noah-isme/taskboard-api/internal/handler"
	"github.com/noah-isme/taskboard-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	TaskHandler      *handler.TaskHandler
	UploadHandler    *handler.UploadHandler
	ActivityHandler  *handler.ActivityHandler
	DashboardHandler *handler.DashboardHandler
	// Identity resolves the caller for every route below it.
	Identity fiber.Handler
	// AuthLimiter throttles register and login.
	AuthLimiter fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	identity := deps.Identity
	if identity == nil {
		identity = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/", identity, func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api, deps.AuthLimiter)
	}
	if deps.TaskHandler != nil {
		deps.TaskHandler.Register(api)
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(api)
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api)
	}
}
