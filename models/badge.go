// models/badge.go
package models

// Badge is an insignia earned by reaching a progress threshold. Badges are
// derived from the completed set and never stored.
type Badge struct {
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Rarity      string           `json:"rarity"`    // common, rare, epic, legendary
	Threshold   map[string]int64 `json:"threshold"` // e.g. {"missions_completed": 5}
}

// BadgeTriggers lists every badge in award order.
var BadgeTriggers = []Badge{
	{
		Code:        "WELCOME",
		Name:        "Welcome Aboard!",
		Description: "Joined the fleet",
		Rarity:      "common",
		Threshold:   map[string]int64{"event": 1},
	},
	{
		Code:        "FIRST_SECTOR",
		Name:        "First Sector",
		Description: "Secured your first mission",
		Rarity:      "common",
		Threshold:   map[string]int64{"missions_completed": 1},
	},
	{
		Code:        "WORLD_CLEARED",
		Name:        "World Cleared",
		Description: "Completed every mission of a world",
		Rarity:      "rare",
		Threshold:   map[string]int64{"worlds_cleared": 1},
	},
	{
		Code:        "LEVEL_5",
		Name:        "Commander Grade",
		Description: "Reached level 5",
		Rarity:      "epic",
		Threshold:   map[string]int64{"level": 5},
	},
	{
		Code:        "ALL_WORLDS",
		Name:        "Galaxy Charted",
		Description: "Cleared every world in the catalog",
		Rarity:      "legendary",
		Threshold:   map[string]int64{"all_worlds": 1},
	},
}
