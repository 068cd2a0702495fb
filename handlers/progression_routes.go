// handlers/progression_routes.go
package handlers

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"mission-console/models"
	"mission-console/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxUsernameLen = 32

var communityStatuses = map[string]bool{
	models.CommunityStatusRecruit: true,
	models.CommunityStatusPending: true,
	models.CommunityStatusMember:  true,
}

// validatePatch trims the username and rejects values the profile cannot hold.
func validatePatch(p *models.ProfilePatch) string {
	if p.Username != nil {
		name := strings.TrimSpace(*p.Username)
		if name == "" {
			return "username must not be empty"
		}
		if utf8.RuneCountInString(name) > maxUsernameLen {
			return "username is too long"
		}
		p.Username = &name
	}
	if p.Avatar != nil && strings.TrimSpace(*p.Avatar) == "" {
		return "avatar must not be empty"
	}
	if p.CommunityStatus != nil && !communityStatuses[*p.CommunityStatus] {
		return "unknown community status"
	}
	return ""
}

func SetupProgressionRoutes(secured fiber.Router, console *services.Console, log *zap.Logger) {
	store := console.Store()

	secured.Get("/progress", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"progress":  console.Progress(),
			"completed": store.Completed(),
		})
	})

	secured.Post("/missions/:id/complete", func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return badRequest(c, "invalid mission id", err.Error())
		}

		view, recorded, err := console.CompleteMission(c.UserContext(), id)
		if err != nil {
			if statusFor(err) == fiber.StatusInternalServerError {
				log.Error("❌ [PROGRESS] failed to record completion", zap.Int("mission", id), zap.Error(err))
			}
			return fail(c, "failed to complete mission", err)
		}
		return c.JSON(fiber.Map{
			"mission_id":        id,
			"already_completed": !recorded,
			"progress":          view.Progress,
		})
	})

	secured.Get("/badges", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"badges": console.Badges()})
	})

	secured.Get("/profile", func(c *fiber.Ctx) error {
		return c.JSON(store.Profile())
	})

	secured.Patch("/profile", func(c *fiber.Ctx) error {
		var patch models.ProfilePatch
		if err := c.BodyParser(&patch); err != nil {
			return badRequest(c, "invalid request body", err.Error())
		}
		if msg := validatePatch(&patch); msg != "" {
			return badRequest(c, "invalid profile", msg)
		}
		view, err := console.Dispatch(c.UserContext(), services.UpdateProfile{Patch: patch})
		if err != nil {
			log.Error("❌ [PROFILE] failed to update", zap.Error(err))
			return fail(c, "failed to update profile", err)
		}
		return c.JSON(view.Profile)
	})
}
