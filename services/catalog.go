// services/catalog.go
package services

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"mission-console/models"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var ErrUnknownMission = errors.New("unknown mission")
var ErrUnknownWorld = errors.New("unknown world")

// Catalog is the read-only registry of worlds, chapters and missions. It is built
// once at startup and never mutated afterwards; accessors hand out copies.
type Catalog struct {
	worlds   []models.World
	missions map[int]models.Mission
	bySlug   map[string]int
	byWorld  map[int][]int
}

type catalogFile struct {
	Worlds   []models.World   `yaml:"worlds"`
	Missions []models.Mission `yaml:"missions"`
}

// NewCatalog validates the tables and indexes them.
func NewCatalog(worlds []models.World, missions []models.Mission) (*Catalog, error) {
	titleCase := cases.Title(language.English)

	c := &Catalog{
		missions: make(map[int]models.Mission, len(missions)),
		bySlug:   make(map[string]int, len(worlds)),
		byWorld:  make(map[int][]int, len(worlds)),
	}

	chapterOwner := map[int]int{}
	for _, w := range worlds {
		if w.ID <= 0 {
			return nil, fmt.Errorf("world %q: id must be positive", w.Title)
		}
		if w.Slug == "" {
			w.Slug = slug.Make(w.Title)
		}
		if _, dup := c.bySlug[w.Slug]; dup {
			return nil, fmt.Errorf("world %d: duplicate slug %q", w.ID, w.Slug)
		}
		w.Subject = titleCase.String(w.Subject)
		if len(w.Chapters) == 0 {
			return nil, fmt.Errorf("world %d: at least one chapter is required", w.ID)
		}
		chapters := make([]models.Chapter, len(w.Chapters))
		for i, ch := range w.Chapters {
			if owner, dup := chapterOwner[ch.ID]; dup {
				return nil, fmt.Errorf("chapter %d: already owned by world %d", ch.ID, owner)
			}
			chapterOwner[ch.ID] = w.ID
			ch.WorldID = w.ID
			ch.MissionIDs = append([]int(nil), ch.MissionIDs...)
			chapters[i] = ch
		}
		w.Chapters = chapters
		c.bySlug[w.Slug] = len(c.worlds)
		c.worlds = append(c.worlds, w)
	}

	for _, m := range missions {
		if _, dup := c.missions[m.ID]; dup {
			return nil, fmt.Errorf("mission %d: duplicate id", m.ID)
		}
		if m.XP <= 0 {
			return nil, fmt.Errorf("mission %d: xp must be positive", m.ID)
		}
		if !m.Difficulty.Valid() {
			return nil, fmt.Errorf("mission %d: unknown difficulty", m.ID)
		}
		owner, ok := chapterOwner[m.ChapterID]
		if !ok || owner != m.WorldID {
			return nil, fmt.Errorf("mission %d: chapter %d does not belong to world %d", m.ID, m.ChapterID, m.WorldID)
		}
		m.Locked = false
		c.missions[m.ID] = m
	}

	// Every chapter listing must point at missions of that chapter, and every
	// mission must be listed exactly once.
	listed := map[int]bool{}
	for _, w := range c.worlds {
		for _, ch := range w.Chapters {
			for _, id := range ch.MissionIDs {
				m, ok := c.missions[id]
				if !ok {
					return nil, fmt.Errorf("chapter %d: %w %d", ch.ID, ErrUnknownMission, id)
				}
				if m.ChapterID != ch.ID || listed[id] {
					return nil, fmt.Errorf("chapter %d: mission %d listed in the wrong place", ch.ID, id)
				}
				listed[id] = true
				c.byWorld[w.ID] = append(c.byWorld[w.ID], id)
			}
		}
	}
	if len(listed) != len(c.missions) {
		return nil, fmt.Errorf("catalog has %d missions not listed in any chapter", len(c.missions)-len(listed))
	}

	return c, nil
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c, err := NewCatalog(f.Worlds, f.Missions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) Mission(id int) (models.Mission, bool) {
	m, ok := c.missions[id]
	return m, ok
}

func (c *Catalog) Worlds() []models.World {
	out := make([]models.World, len(c.worlds))
	for i, w := range c.worlds {
		out[i] = cloneWorld(w)
	}
	return out
}

func (c *Catalog) World(id int) (models.World, bool) {
	for _, w := range c.worlds {
		if w.ID == id {
			return cloneWorld(w), true
		}
	}
	return models.World{}, false
}

func (c *Catalog) WorldBySlug(s string) (models.World, bool) {
	i, ok := c.bySlug[s]
	if !ok {
		return models.World{}, false
	}
	return cloneWorld(c.worlds[i]), true
}

// MissionsForWorld returns the world's missions in chapter order.
func (c *Catalog) MissionsForWorld(worldID int) []models.Mission {
	ids := c.byWorld[worldID]
	out := make([]models.Mission, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.missions[id])
	}
	return out
}

// MissionIDs returns every mission id in ascending order.
func (c *Catalog) MissionIDs() []int {
	ids := make([]int, 0, len(c.missions))
	for id := range c.missions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// WithLocks marks missions locked while the previous mission in their chapter is
// incomplete. The first mission of every chapter is always open.
func (c *Catalog) WithLocks(missions []models.Mission, completed map[int]bool) []models.Mission {
	out := make([]models.Mission, len(missions))
	for i, m := range missions {
		m.Locked = false
		if prev, ok := c.previousInChapter(m); ok && !completed[prev] {
			m.Locked = true
		}
		out[i] = m
	}
	return out
}

func (c *Catalog) previousInChapter(m models.Mission) (int, bool) {
	for _, w := range c.worlds {
		if w.ID != m.WorldID {
			continue
		}
		for _, ch := range w.Chapters {
			if ch.ID != m.ChapterID {
				continue
			}
			for i, id := range ch.MissionIDs {
				if id == m.ID && i > 0 {
					return ch.MissionIDs[i-1], true
				}
			}
		}
	}
	return 0, false
}

func cloneWorld(w models.World) models.World {
	chapters := make([]models.Chapter, len(w.Chapters))
	for i, ch := range w.Chapters {
		ch.MissionIDs = append([]int(nil), ch.MissionIDs...)
		chapters[i] = ch
	}
	w.Chapters = chapters
	return w
}

// DefaultCatalog returns the built-in content. The tables are known-good, so a
// validation failure here is a programming error.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(models.DefaultWorlds, models.DefaultMissions)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return c
}
