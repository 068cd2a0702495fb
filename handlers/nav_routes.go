// handlers/nav_routes.go
package handlers

import (
	"mission-console/services"

	"github.com/gofiber/fiber/v2"
)

type tabRequest struct {
	Tab services.Tab `json:"tab"`
}

func SetupNavRoutes(secured fiber.Router, console *services.Console) {
	dispatch := func(c *fiber.Ctx, intent services.Intent) error {
		view, err := console.Dispatch(c.UserContext(), intent)
		if err != nil {
			return fail(c, "navigation rejected", err)
		}
		return c.JSON(fiber.Map{"nav": view.Nav, "current": view.Current, "progress": view.Progress})
	}

	secured.Get("/nav", func(c *fiber.Ctx) error {
		nav := console.Nav()
		return c.JSON(fiber.Map{"nav": nav, "current": nav.Current()})
	})

	secured.Post("/nav/push", func(c *fiber.Ctx) error {
		var frame services.Frame
		if err := c.BodyParser(&frame); err != nil {
			return badRequest(c, "invalid request body", err.Error())
		}
		return dispatch(c, services.PushScreen{Frame: frame})
	})

	secured.Post("/nav/pop", func(c *fiber.Ctx) error {
		if c.QueryBool("all") {
			return dispatch(c, services.PopToRoot{})
		}
		return dispatch(c, services.PopScreen{})
	})

	secured.Post("/nav/tab", func(c *fiber.Ctx) error {
		var req tabRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err.Error())
		}
		return dispatch(c, services.SelectTab{Tab: req.Tab})
	})
}
