// services/badge.go
package services

import (
	"mission-console/models"
)

type badgeStats struct {
	missionsCompleted int64
	level             int64
	worldsCleared     int64
	allWorlds         int64
}

func statsFor(completed []int, catalog *Catalog) badgeStats {
	done := make(map[int]bool, len(completed))
	for _, id := range completed {
		if _, ok := catalog.Mission(id); ok {
			done[id] = true
		}
	}

	st := badgeStats{
		missionsCompleted: int64(len(done)),
		level:             ComputeLevel(ComputeXP(completed, catalog, false)),
	}
	worlds := catalog.Worlds()
	for _, w := range worlds {
		missions := catalog.MissionsForWorld(w.ID)
		cleared := len(missions) > 0
		for _, m := range missions {
			if !done[m.ID] {
				cleared = false
				break
			}
		}
		if cleared {
			st.worldsCleared++
		}
	}
	if len(worlds) > 0 && st.worldsCleared == int64(len(worlds)) {
		st.allWorlds = 1
	}
	return st
}

func (st badgeStats) meets(req map[string]int64) bool {
	for key, required := range req {
		switch key {
		case "missions_completed":
			if st.missionsCompleted < required {
				return false
			}
		case "level":
			if st.level < required {
				return false
			}
		case "worlds_cleared":
			if st.worldsCleared < required {
				return false
			}
		case "all_worlds":
			if st.allWorlds < required {
				return false
			}
		case "event": // awarded to every profile
		default:
			return false
		}
	}
	return true
}

// EarnedBadges lists the badges the completed set qualifies for, in award order.
func EarnedBadges(completed []int, catalog *Catalog) []models.Badge {
	st := statsFor(completed, catalog)
	out := []models.Badge{}
	for _, b := range models.BadgeTriggers {
		if st.meets(b.Threshold) {
			out = append(out, b)
		}
	}
	return out
}

// NewBadges reports the badges earned by after that before did not have.
func NewBadges(before, after []int, catalog *Catalog) []models.Badge {
	had := map[string]bool{}
	for _, b := range EarnedBadges(before, catalog) {
		had[b.Code] = true
	}
	var out []models.Badge
	for _, b := range EarnedBadges(after, catalog) {
		if !had[b.Code] {
			out = append(out, b)
		}
	}
	return out
}
