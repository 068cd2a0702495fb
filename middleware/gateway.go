// middleware/gateway.go
package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ConsoleTokenMiddleware validates the Bearer token a fronting gateway or
// local client presents. An empty expected token disables the check, which is
// the normal single-device setup. /healthz is always open.
func ConsoleTokenMiddleware(expectedToken string, log *zap.Logger) fiber.Handler {
	if expectedToken == "" {
		log.Warn("⚠️ [TOKEN_AUTH] CONSOLE_TOKEN not set, API is unauthenticated")
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		if c.Path() == "/healthz" {
			return c.Next()
		}

		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" && wantsEventStream(c) {
			// EventSource cannot set headers
			token = queryToken(c)
		}
		if token == "" {
			log.Info("🚫 [TOKEN_AUTH] missing token", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "console authentication token missing",
			})
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
			log.Warn("❌ [TOKEN_AUTH] invalid token", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid console authentication token",
			})
		}
		return c.Next()
	}
}

// bearerToken parses "Bearer <token>" and falls back to the raw header value.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if t, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(t)
	}
	return header
}
