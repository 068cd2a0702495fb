// handlers/routes.go
package handlers

import (
	"mission-console/middleware"
	"mission-console/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SetupRoutes mounts the public catalog and session routes and the /s/ routes
// that require a logged-in session.
func SetupRoutes(app *fiber.App, console *services.Console, log *zap.Logger) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "syncing": console.Mesh().Syncing()})
	})

	// 🔓 Public routes
	SetupCatalogRoutes(app, console)
	SetupSessionRoutes(app, console, log)

	// 🔐 Secured routes
	secured := app.Group("/s", middleware.SessionMiddleware(console, log))
	SetupProgressionRoutes(secured, console, log)
	SetupNavRoutes(secured, console)
	SetupMeshRoutes(secured, console, log)
}
