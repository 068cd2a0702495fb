// models/catalog.go
package models

import (
	"fmt"
	"strings"
)

// Difficulty is the ordered tier of a mission. Higher values are harder.
type Difficulty int

const (
	DifficultyCadet Difficulty = iota + 1
	DifficultyPilot
	DifficultyAce
	DifficultyLegend
)

var difficultyNames = map[Difficulty]string{
	DifficultyCadet:  "cadet",
	DifficultyPilot:  "pilot",
	DifficultyAce:    "ace",
	DifficultyLegend: "legend",
}

func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

func (d Difficulty) Valid() bool {
	_, ok := difficultyNames[d]
	return ok
}

// ParseDifficulty accepts the lowercase tier name.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, name := range difficultyNames {
		if name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown difficulty %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(b []byte) error {
	parsed, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Mission is an immutable catalog entry.
type Mission struct {
	ID         int        `json:"id" yaml:"id"`
	WorldID    int        `json:"world_id" yaml:"world_id"`
	ChapterID  int        `json:"chapter_id" yaml:"chapter_id"`
	Title      string     `json:"title" yaml:"title"`
	Narrative  string     `json:"narrative" yaml:"narrative"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
	XP         int64      `json:"xp" yaml:"xp"`

	// Locked is a display flag computed from progress, never stored in the catalog.
	Locked bool `json:"locked" yaml:"-"`
}

// Chapter groups the missions of a world in play order.
type Chapter struct {
	ID         int    `json:"id" yaml:"id"`
	WorldID    int    `json:"world_id" yaml:"-"`
	Title      string `json:"title" yaml:"title"`
	MissionIDs []int  `json:"mission_ids" yaml:"mission_ids"`
}

// World is a themed sector of the catalog.
type World struct {
	ID       int       `json:"id" yaml:"id"`
	Slug     string    `json:"slug" yaml:"slug"`
	Subject  string    `json:"subject" yaml:"subject"`
	Title    string    `json:"title" yaml:"title"`
	Tagline  string    `json:"tagline" yaml:"tagline"`
	Icon     string    `json:"icon" yaml:"icon"`
	Color    string    `json:"color" yaml:"color"`
	Chapters []Chapter `json:"chapters" yaml:"chapters"`
}
