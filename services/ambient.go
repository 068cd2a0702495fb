// services/ambient.go
package services

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"mission-console/models"
)

// AmbientGenerator produces decorative activity: synthetic competitors for the
// leaderboard and synthetic recruits for the ticker. Its output is marked
// Synthetic and never enters the shared mesh document.
type AmbientGenerator interface {
	Competitors(self models.Commander, n int) []models.Commander
	Recruit(now time.Time) models.Signal
}

var ambientCallsigns = []string{
	"Nova", "Orion", "Vega", "Lyra", "Atlas", "Rigel", "Sirius", "Altair",
	"Castor", "Electra", "Juno", "Kepler", "Nyx", "Sol", "Tycho", "Zephyr",
}

var ambientAvatars = []string{"🚀", "🛸", "🌠", "🪐", "👩‍🚀", "🤖", "🌟", "☄️"}

// RandomAmbient is a seeded AmbientGenerator.
type RandomAmbient struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomAmbient(seed int64) *RandomAmbient {
	return &RandomAmbient{rng: rand.New(rand.NewSource(seed))}
}

// Competitors spreads n synthetic commanders around the user's XP. Their ids
// are stable for a given seed and index so a view does not flicker between calls.
func (a *RandomAmbient) Competitors(self models.Commander, n int) []models.Commander {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.Commander, 0, n)
	for i := 0; i < n; i++ {
		spread := int64(a.rng.Intn(2400)) - 1200
		xp := self.XP + spread
		if xp < 0 {
			xp = int64(a.rng.Intn(300))
		}
		out = append(out, models.Commander{
			Username:   fmt.Sprintf("%s-%02d", ambientCallsigns[a.rng.Intn(len(ambientCallsigns))], a.rng.Intn(100)),
			XP:         xp,
			Avatar:     ambientAvatars[a.rng.Intn(len(ambientAvatars))],
			ID:         fmt.Sprintf("ambient-%d", i),
			LastActive: time.Now().Add(-time.Duration(a.rng.Intn(3600)) * time.Second).UnixMilli(),
			Synthetic:  true,
		})
	}
	return out
}

func (a *RandomAmbient) Recruit(now time.Time) models.Signal {
	a.mu.Lock()
	defer a.mu.Unlock()

	name := fmt.Sprintf("%s-%02d", ambientCallsigns[a.rng.Intn(len(ambientCallsigns))], a.rng.Intn(100))
	return models.Signal{
		ID:        fmt.Sprintf("ambient-%d-%d", now.UnixNano(), a.rng.Intn(1000)),
		Commander: name,
		Action:    "joined the fleet",
		Timestamp: now.UnixMilli(),
		Synthetic: true,
	}
}
