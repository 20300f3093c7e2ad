package domain

import (
	"time"

	"github.com/google/uuid"
)

// FocusSession is a timed work session. It is Open while EndTime is nil and
// Closed (terminal, scored) afterwards.
type FocusSession struct {
	ID               uuid.UUID
	UserKey          string
	ChallengeType    *ChallengeType // nil for freeform sessions
	StartTime        time.Time
	EndTime          *time.Time
	DurationSeconds  int
	ActionsCompleted int
	XPEarned         int
	BonusXP          int
	Completed        bool // full duration elapsed rather than stopped early
	CreatedAt        time.Time
}

// IsOpen reports whether the session still accepts EndSession.
func (s *FocusSession) IsOpen() bool {
	return s.EndTime == nil
}

// Deadline is when the allotted duration runs out.
func (s *FocusSession) Deadline() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationSeconds) * time.Second)
}

// TotalXP is the experience the session added to progress.
func (s *FocusSession) TotalXP() int {
	return s.XPEarned + s.BonusXP
}

// Close records the scored result. Callers must check IsOpen first.
func (s *FocusSession) Close(now time.Time, actions int, completed bool, score SessionScore) {
	s.EndTime = &now
	s.ActionsCompleted = actions
	s.Completed = completed
	s.XPEarned = score.BaseXP
	s.BonusXP = score.BonusXP
}
