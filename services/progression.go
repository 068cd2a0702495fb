package services

// XPPerLevel is the flat amount of XP that separates two levels.
const XPPerLevel = 1000

// CommunityBonus scales mission XP while the community screen is active.
// Numerator/denominator keep the floor exact for integer XP values.
const (
	communityBonusNum = 3
	communityBonusDen = 2
)

// RankTitles are display titles keyed by the minimum level that earns them.
var RankTitles = []struct {
	MinLevel int64
	Title    string
}{
	{0, "Cadet"},
	{1, "Ensign"},
	{3, "Lieutenant"},
	{5, "Commander"},
	{8, "Captain"},
	{12, "Admiral"},
}

// ComputeXP sums the XP of every completed mission found in the catalog.
// Unknown ids contribute nothing. With bonusActive each mission's XP is
// multiplied by 1.5 and floored before summing.
func ComputeXP(completed []int, catalog *Catalog, bonusActive bool) int64 {
	var total int64
	for _, id := range completed {
		m, ok := catalog.Mission(id)
		if !ok {
			continue
		}
		if bonusActive {
			total += m.XP * communityBonusNum / communityBonusDen
		} else {
			total += m.XP
		}
	}
	return total
}

// ComputeLevel returns floor(xp / 1000).
func ComputeLevel(xp int64) int64 {
	if xp < 0 {
		return 0
	}
	return xp / XPPerLevel
}

// RankTitle returns the display title for a level.
func RankTitle(level int64) string {
	title := RankTitles[0].Title
	for _, r := range RankTitles {
		if level >= r.MinLevel {
			title = r.Title
		}
	}
	return title
}

// LevelProgress reports how far xp is into its level and how much is left to the next.
func LevelProgress(xp int64) (into, toNext int64) {
	if xp < 0 {
		xp = 0
	}
	into = xp % XPPerLevel
	return into, XPPerLevel - into
}

// Progression is the derived view of local progress.
type Progression struct {
	XP          int64  `json:"xp"`
	BaseXP      int64  `json:"base_xp"`
	Level       int64  `json:"level"`
	RankTitle   string `json:"rank_title"`
	XPIntoLevel int64  `json:"xp_into_level"`
	XPToNext    int64  `json:"xp_to_next_level"`
	BonusActive bool   `json:"bonus_active"`
	Completed   int    `json:"missions_completed"`
	Total       int    `json:"missions_total"`
}

// Progress derives the full progression view. Level and rank follow the
// displayed XP so the bonus shows up consistently on the community screen.
func Progress(completed []int, catalog *Catalog, bonusActive bool) Progression {
	xp := ComputeXP(completed, catalog, bonusActive)
	level := ComputeLevel(xp)
	into, toNext := LevelProgress(xp)
	return Progression{
		XP:          xp,
		BaseXP:      ComputeXP(completed, catalog, false),
		Level:       level,
		RankTitle:   RankTitle(level),
		XPIntoLevel: into,
		XPToNext:    toNext,
		BonusActive: bonusActive,
		Completed:   len(completed),
		Total:       len(catalog.MissionIDs()),
	}
}
