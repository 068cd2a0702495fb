// middleware/sse_auth.go
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

func wantsEventStream(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), "text/event-stream") ||
		strings.HasSuffix(c.Path(), "/events")
}

func queryToken(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Query("token"))
}

// SSEHeaders prepares a response for server-sent events.
func SSEHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")
		return c.Next()
	}
}
