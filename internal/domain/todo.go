package domain

import (
	"time"

	"github.com/google/uuid"
)

// Todo is a to-do item that pays XPValue the first time it is completed.
type Todo struct {
	ID          uuid.UUID
	UserKey     string
	Title       string
	XPValue     int
	Completed   bool
	CompletedAt *time.Time
	RewardedAt  *time.Time // set once, when XP was paid out
	CreatedAt   time.Time
}

// SetCompleted toggles completion and reports whether XP should be paid now.
func (t *Todo) SetCompleted(done bool, now time.Time) (reward bool) {
	if !done {
		t.Completed = false
		t.CompletedAt = nil
		return false
	}
	if t.Completed {
		return false
	}

	t.Completed = true
	t.CompletedAt = &now
	if t.RewardedAt != nil {
		return false
	}
	t.RewardedAt = &now
	return true
}
