package domain

// LevelThreshold pairs a level with the cumulative XP needed to reach it.
type LevelThreshold struct {
	Level int
	XP    int
}

// LevelThresholds is the progression table. Strictly increasing in both
// level and XP, starting at (1, 0). Progression caps at the last entry.
var LevelThresholds = []LevelThreshold{
	{1, 0}, {2, 100}, {3, 250}, {4, 450}, {5, 700},
	{6, 1000}, {7, 1350}, {8, 1750}, {9, 2200}, {10, 2700},
	{11, 3250}, {12, 3850}, {13, 4500}, {14, 5200}, {15, 5950},
	{16, 6750}, {17, 7600}, {18, 8500}, {19, 9450}, {20, 10500},
	{21, 11600}, {22, 12750}, {23, 13950}, {24, 15200}, {25, 16500},
}

// MaxLevel is the highest level defined by LevelThresholds.
var MaxLevel = LevelThresholds[len(LevelThresholds)-1].Level

// LevelForXP returns the highest level whose threshold is <= xp.
// Never returns less than 1 and never more than MaxLevel.
func LevelForXP(xp int) int {
	level := LevelThresholds[0].Level
	for _, t := range LevelThresholds {
		if xp < t.XP {
			break
		}
		level = t.Level
	}
	return level
}

// ThresholdFor returns the cumulative XP required for level.
func ThresholdFor(level int) (int, bool) {
	for _, t := range LevelThresholds {
		if t.Level == level {
			return t.XP, true
		}
	}
	return 0, false
}

// LevelProgress describes how far a user is through their current level.
type LevelProgress struct {
	Level       int
	IntoLevel   int // XP earned since the current level's threshold
	LevelSpan   int // XP between current and next threshold; 0 at max level
	ToNextLevel int // XP still needed; 0 at max level
	MaxedOut    bool
}

// ProgressForXP computes LevelProgress for a cumulative XP value.
func ProgressForXP(xp int) LevelProgress {
	level := LevelForXP(xp)
	current, _ := ThresholdFor(level)

	next, ok := ThresholdFor(level + 1)
	if !ok {
		return LevelProgress{Level: level, IntoLevel: xp - current, MaxedOut: true}
	}

	return LevelProgress{
		Level:       level,
		IntoLevel:   xp - current,
		LevelSpan:   next - current,
		ToNextLevel: next - xp,
	}
}

// League is a cosmetic band over a contiguous level range.
type League struct {
	Key      string
	Title    string
	Color    string
	Badge    string
	MinLevel int
}

// Leagues are ordered by MinLevel; the last band is open-ended.
var Leagues = []League{
	{Key: "rookie", Title: "Rookie League", Color: "gray", Badge: "🥉", MinLevel: 1},
	{Key: "bronze", Title: "Bronze League", Color: "orange", Badge: "🥉", MinLevel: 6},
	{Key: "silver", Title: "Silver League", Color: "silver", Badge: "🥈", MinLevel: 11},
	{Key: "gold", Title: "Gold League", Color: "yellow", Badge: "🥇", MinLevel: 16},
	{Key: "platinum", Title: "Platinum League", Color: "blue", Badge: "💎", MinLevel: 26},
	{Key: "diamond", Title: "Diamond League", Color: "cyan", Badge: "💎", MinLevel: 36},
	{Key: "master", Title: "Master League", Color: "purple", Badge: "👑", MinLevel: 46},
}

// LeagueForLevel returns the band containing level. Levels below the first
// band fall back to the lowest league.
func LeagueForLevel(level int) League {
	for i := len(Leagues) - 1; i >= 0; i-- {
		if level >= Leagues[i].MinLevel {
			return Leagues[i]
		}
	}
	return Leagues[0]
}

// LevelTitle returns the display title for a level.
func LevelTitle(level int) string {
	switch {
	case level <= 2:
		return "Beginner"
	case level <= 5:
		return "Hustler"
	case level <= 8:
		return "Sales Pro"
	case level <= 10:
		return "Elite Closer"
	case level <= 15:
		return "Business Master"
	case level <= 20:
		return "Industry Legend"
	default:
		return "Legendary Boss"
	}
}
