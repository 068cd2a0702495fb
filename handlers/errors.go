// handlers/errors.go
package handlers

import (
	"errors"

	"mission-console/services"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps console errors to HTTP statuses. Anything unrecognised is a
// storage or internal failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotLoggedIn):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUnknownMission), errors.Is(err, services.ErrUnknownWorld):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrUnknownTab), errors.Is(err, services.ErrUnknownFrame),
		errors.Is(err, services.ErrInvalidFrame):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrEmptyStack), errors.Is(err, services.ErrLoggedIn):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, message string, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": message,
		"cause": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message, cause string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
		"cause": cause,
	})
}
