// handlers/catalog_routes.go
package handlers

import (
	"fmt"
	"strconv"

	"mission-console/models"
	"mission-console/services"

	"github.com/gofiber/fiber/v2"
)

type worldSummary struct {
	models.World
	MissionsCompleted int `json:"missions_completed"`
	MissionsTotal     int `json:"missions_total"`
}

type missionView struct {
	models.Mission
	Completed bool `json:"completed"`
}

func missionViews(catalog *services.Catalog, missions []models.Mission, completed map[int]bool) []missionView {
	locked := catalog.WithLocks(missions, completed)
	out := make([]missionView, len(locked))
	for i, m := range locked {
		out[i] = missionView{Mission: m, Completed: completed[m.ID]}
	}
	return out
}

func SetupCatalogRoutes(app fiber.Router, console *services.Console) {
	catalog := console.Catalog()
	store := console.Store()

	app.Get("/catalog/worlds", func(c *fiber.Ctx) error {
		completed := store.CompletedSet()
		worlds := catalog.Worlds()
		out := make([]worldSummary, len(worlds))
		for i, w := range worlds {
			missions := catalog.MissionsForWorld(w.ID)
			done := 0
			for _, m := range missions {
				if completed[m.ID] {
					done++
				}
			}
			out[i] = worldSummary{World: w, MissionsCompleted: done, MissionsTotal: len(missions)}
		}
		return c.JSON(fiber.Map{"worlds": out})
	})

	app.Get("/catalog/worlds/:slug", func(c *fiber.Ctx) error {
		w, ok := catalog.WorldBySlug(c.Params("slug"))
		if !ok {
			// numeric ids are accepted too
			if id, err := strconv.Atoi(c.Params("slug")); err == nil {
				w, ok = catalog.World(id)
			}
		}
		if !ok {
			return fail(c, "world not found", fmt.Errorf("%w %q", services.ErrUnknownWorld, c.Params("slug")))
		}
		missions := missionViews(catalog, catalog.MissionsForWorld(w.ID), store.CompletedSet())
		return c.JSON(fiber.Map{"world": w, "missions": missions})
	})

	app.Get("/catalog/missions/:id", func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return badRequest(c, "invalid mission id", err.Error())
		}
		m, ok := catalog.Mission(id)
		if !ok {
			return fail(c, "mission not found", fmt.Errorf("%w %d", services.ErrUnknownMission, id))
		}
		view := missionViews(catalog, []models.Mission{m}, store.CompletedSet())[0]
		return c.JSON(view)
	})
}
