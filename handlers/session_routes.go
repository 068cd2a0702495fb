// handlers/session_routes.go
package handlers

import (
	"mission-console/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type showAuthRequest struct {
	Visible bool `json:"visible"`
}

func SetupSessionRoutes(app fiber.Router, console *services.Console, log *zap.Logger) {
	app.Get("/session", func(c *fiber.Ctx) error {
		return c.JSON(console.View())
	})

	app.Post("/session/auth", func(c *fiber.Ctx) error {
		req := showAuthRequest{Visible: true}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return badRequest(c, "invalid request body", err.Error())
			}
		}
		view, err := console.Dispatch(c.UserContext(), services.ShowAuth{Visible: req.Visible})
		if err != nil {
			return fail(c, "cannot show auth screen", err)
		}
		return c.JSON(view)
	})

	app.Post("/session/login", func(c *fiber.Ctx) error {
		view, err := console.Dispatch(c.UserContext(), services.Login{})
		if err != nil {
			log.Error("❌ [SESSION] login failed", zap.Error(err))
			return fail(c, "login failed", err)
		}
		log.Info("✅ [SESSION] logged in", zap.String("profile", view.Profile.ID))
		return c.JSON(view)
	})

	app.Post("/session/logout", func(c *fiber.Ctx) error {
		view, err := console.Dispatch(c.UserContext(), services.Logout{})
		if err != nil {
			log.Error("❌ [SESSION] logout failed", zap.Error(err))
			return fail(c, "logout failed", err)
		}
		log.Info("👋 [SESSION] logged out")
		return c.JSON(view)
	})
}
