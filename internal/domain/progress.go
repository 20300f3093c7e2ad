package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used for LastResetDate and ActionEvent.Date.
const DateLayout = "2006-01-02"

// DefaultUserKey is used when a caller does not identify a user.
const DefaultUserKey = "default"

// UserProgress is the single mutable XP aggregate per user key.
// CurrentLevel is always LevelForXP(CumulativeXP) after any mutation.
type UserProgress struct {
	ID            uuid.UUID
	UserKey       string
	CumulativeXP  int
	CurrentLevel  int
	TodayXP       int
	LastResetDate string
	CreatedAt     time.Time
}

// NewUserProgress returns zeroed progress for a user first seen on today.
func NewUserProgress(userKey, today string, now time.Time) UserProgress {
	return UserProgress{
		ID:            uuid.New(),
		UserKey:       userKey,
		CumulativeXP:  0,
		CurrentLevel:  1,
		TodayXP:       0,
		LastResetDate: today,
		CreatedAt:     now,
	}
}

// DateIn renders t as a calendar date in loc.
func DateIn(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// ApplyRollover zeroes TodayXP when the stored reset date differs from today.
// Applying it twice with the same date is a no-op.
func ApplyRollover(p UserProgress, today string) UserProgress {
	if p.LastResetDate == today {
		return p
	}
	p.TodayXP = 0
	p.LastResetDate = today
	return p
}

// IsStale reports whether ApplyRollover would change p.
func (p UserProgress) IsStale(today string) bool {
	return p.LastResetDate != today
}

// Award rolls the day over if needed, adds amount to both counters and
// recomputes the level. It returns the number of levels gained.
func (p *UserProgress) Award(amount int, today string) int {
	*p = ApplyRollover(*p, today)

	before := p.CurrentLevel
	p.CumulativeXP += amount
	p.TodayXP += amount
	p.CurrentLevel = LevelForXP(p.CumulativeXP)

	return p.CurrentLevel - before
}

// Reset is the administrative reset: the only path that lowers CumulativeXP.
func (p *UserProgress) Reset(today string) {
	p.CumulativeXP = 0
	p.TodayXP = 0
	p.CurrentLevel = LevelForXP(0)
	p.LastResetDate = today
}
