package services

import (
	"testing"

	"mission-console/models"

	"github.com/stretchr/testify/assert"
)

func codes(badges []models.Badge) []string {
	out := make([]string, len(badges))
	for i, b := range badges {
		out[i] = b.Code
	}
	return out
}

func TestEarnedBadges(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, []string{"WELCOME"}, codes(EarnedBadges(nil, c)))
	assert.Equal(t, []string{"WELCOME", "FIRST_SECTOR"}, codes(EarnedBadges([]int{101}, c)))

	world := []int{}
	for _, m := range c.MissionsForWorld(1) {
		world = append(world, m.ID)
	}
	assert.Contains(t, codes(EarnedBadges(world, c)), "WORLD_CLEARED")
	assert.NotContains(t, codes(EarnedBadges(world, c)), "ALL_WORLDS")

	all := codes(EarnedBadges(c.MissionIDs(), c))
	assert.Contains(t, all, "ALL_WORLDS")
	assert.Contains(t, all, "LEVEL_5")
}

func TestEarnedBadgesIgnoresUnknownMissions(t *testing.T) {
	assert.Equal(t, []string{"WELCOME"}, codes(EarnedBadges([]int{9999}, DefaultCatalog())))
}

func TestNewBadges(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, []string{"FIRST_SECTOR"}, codes(NewBadges(nil, []int{101}, c)))
	assert.Empty(t, NewBadges([]int{101}, []int{101, 102}, c))
}
