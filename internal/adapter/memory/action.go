package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/heartmarshall/hustle-xp/internal/domain"
)

// ActionRepo is the append-only action ledger.
type ActionRepo struct {
	s *Store
}

// Append adds e to the ledger.
func (r *ActionRepo) Append(ctx context.Context, e *domain.ActionEvent) error {
	defer r.s.lockWrite(ctx)()

	for _, existing := range r.s.actions {
		if existing.ID == e.ID {
			return fmt.Errorf("action_event %s: %w", e.ID, domain.ErrAlreadyExists)
		}
	}
	r.s.actions = append(r.s.actions, *e)
	return nil
}

// ListByDate returns the user's events on date, newest first.
func (r *ActionRepo) ListByDate(_ context.Context, userKey, date string) ([]domain.ActionEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.ActionEvent
	for i := len(r.s.actions) - 1; i >= 0; i-- {
		if e := r.s.actions[i]; e.UserKey == userKey && e.Date == date {
			out = append(out, e)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// CountByType counts the user's events per type with from <= timestamp <= to.
func (r *ActionRepo) CountByType(_ context.Context, userKey string, from, to time.Time) (map[domain.ActionType]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[domain.ActionType]int)
	for _, e := range r.s.actions {
		if e.UserKey == userKey && within(e.Timestamp, from, to) {
			counts[e.Type]++
		}
	}
	return counts, nil
}

// CountBetween counts the user's events in [from, to], restricted to
// actionType when it is non-nil.
func (r *ActionRepo) CountBetween(_ context.Context, userKey string, actionType *domain.ActionType, from, to time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, e := range r.s.actions {
		if e.UserKey != userKey || !within(e.Timestamp, from, to) {
			continue
		}
		if actionType != nil && e.Type != *actionType {
			continue
		}
		n++
	}
	return n, nil
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func sortNewestFirst(events []domain.ActionEvent) {
	slices.SortStableFunc(events, func(a, b domain.ActionEvent) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}
