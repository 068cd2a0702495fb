// handlers/mesh_routes.go
package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"mission-console/middleware"
	"mission-console/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const sseKeepAlive = 15 * time.Second

func SetupMeshRoutes(secured fiber.Router, console *services.Console, log *zap.Logger) {
	mesh := console.Mesh()

	secured.Get("/mesh", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"mesh": mesh.Snapshot(), "syncing": mesh.Syncing()})
	})

	secured.Get("/mesh/leaderboard", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"leaderboard": console.Leaderboard()})
	})

	secured.Get("/mesh/signals", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"signals": console.Signals()})
	})

	secured.Post("/mesh/refresh", func(c *fiber.Ctx) error {
		if _, err := console.Dispatch(c.UserContext(), services.RefreshMesh{}); err != nil {
			return fail(c, "refresh failed", err)
		}
		return c.JSON(fiber.Map{"mesh": mesh.Snapshot(), "syncing": mesh.Syncing()})
	})

	secured.Get("/events", middleware.SSEHeaders(), func(c *fiber.Ctx) error {
		events, cancel := console.Events().Subscribe()
		log.Debug("[SSE] client connected", zap.String("ip", c.IP()))

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer cancel()
			ticker := time.NewTicker(sseKeepAlive)
			defer ticker.Stop()

			// initial comment so proxies open the stream
			if !keepAlive(w) {
				return
			}
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return
					}
					if err := writeEvent(w, ev); err != nil {
						log.Debug("[SSE] client gone", zap.Error(err))
						return
					}
				case <-ticker.C:
					if !keepAlive(w) {
						return
					}
				}
			}
		})
		return nil
	})
}

func keepAlive(w *bufio.Writer) bool {
	if _, err := w.WriteString(":\n\n"); err != nil {
		return false
	}
	return w.Flush() == nil
}

// writeEvent frames ev as a named server-sent event and flushes it.
func writeEvent(w *bufio.Writer, ev services.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload); err != nil {
		return err
	}
	return w.Flush()
}
