package domain

import (
	"time"

	"github.com/google/uuid"
)

// AchievementType identifies an unlockable achievement.
type AchievementType string

const (
	AchievementFirstSession    AchievementType = "first_session"
	AchievementDMMaster        AchievementType = "dm_master"
	AchievementLoomExpert      AchievementType = "loom_expert"
	AchievementSpeedDemon      AchievementType = "speed_demon"
	AchievementConsistencyKing AchievementType = "consistency_king"
)

// AchievementDef is the static description of an achievement.
type AchievementDef struct {
	Type        AchievementType
	Title       string
	Description string
}

// AchievementDefs lists every achievement in unlock-check order.
var AchievementDefs = []AchievementDef{
	{AchievementFirstSession, "First Focus Session", "Complete your first focus session"},
	{AchievementDMMaster, "DM Master", "Average 10+ actions per completed session"},
	{AchievementLoomExpert, "Loom Expert", "Average 5+ actions per completed session"},
	{AchievementSpeedDemon, "Speed Demon", "Complete a session shorter than 10 minutes"},
	{AchievementConsistencyKing, "Consistency King", "Complete 5 sessions in a week"},
}

// Achievement is an unlocked achievement record.
type Achievement struct {
	ID          uuid.UUID
	UserKey     string
	Type        AchievementType
	Title       string
	Description string
	UnlockedAt  time.Time
}

// EarnedAchievements returns the achievement types satisfied by the given
// closed sessions. Only sessions with Completed=true count.
func EarnedAchievements(sessions []FocusSession, now time.Time) []AchievementType {
	var (
		total, actions, fast, recent int
		weekAgo                      = now.AddDate(0, 0, -7)
	)
	for _, s := range sessions {
		if s.IsOpen() || !s.Completed {
			continue
		}
		total++
		actions += s.ActionsCompleted
		if s.DurationSeconds < 600 {
			fast++
		}
		if s.StartTime.After(weekAgo) {
			recent++
		}
	}
	if total == 0 {
		return nil
	}

	earned := []AchievementType{AchievementFirstSession}
	avg := float64(actions) / float64(total)
	if avg >= 10 {
		earned = append(earned, AchievementDMMaster)
	}
	if avg >= 5 {
		earned = append(earned, AchievementLoomExpert)
	}
	if fast > 0 {
		earned = append(earned, AchievementSpeedDemon)
	}
	if recent >= 5 {
		earned = append(earned, AchievementConsistencyKing)
	}
	return earned
}

// LookupAchievement returns the definition for t.
func LookupAchievement(t AchievementType) (AchievementDef, bool) {
	for _, d := range AchievementDefs {
		if d.Type == t {
			return d, true
		}
	}
	return AchievementDef{}, false
}
