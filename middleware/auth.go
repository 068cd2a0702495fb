// middleware/auth.go
package middleware

import (
	"mission-console/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProfileIDLocal is the fiber.Ctx local holding the active profile id.
const ProfileIDLocal = "profile_id"

// Session is what the session guard needs from the console.
type Session interface {
	LoggedIn() bool
	LocalCommander() (models.Profile, int64)
}

// SessionMiddleware guards the /s/ routes: they require a logged-in session.
func SessionMiddleware(session Session, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !session.LoggedIn() {
			log.Debug("[SESSION] rejected, not logged in", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not logged in",
				"cause": "POST /session/login first",
			})
		}

		profile, _ := session.LocalCommander()
		c.Locals(ProfileIDLocal, profile.ID)
		return c.Next()
	}
}
