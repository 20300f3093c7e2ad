package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/hustle-xp/internal/domain"
)

// SessionRepo stores focus sessions. At most one session per user may be open.
type SessionRepo struct {
	s *Store
}

// Create inserts an open session.
func (r *SessionRepo) Create(ctx context.Context, fs *domain.FocusSession) error {
	defer r.s.lockWrite(ctx)()

	if _, ok := r.s.sessions[fs.ID]; ok {
		return fmt.Errorf("focus_session %s: %w", fs.ID, domain.ErrAlreadyExists)
	}
	if fs.IsOpen() {
		for _, other := range r.s.sessions {
			if other.UserKey == fs.UserKey && other.IsOpen() {
				return fmt.Errorf("focus_session %s: session %s still open: %w", fs.ID, other.ID, domain.ErrConflict)
			}
		}
	}
	r.s.sessions[fs.ID] = *fs
	return nil
}

// GetByIDForUpdate returns the user's session with id.
func (r *SessionRepo) GetByIDForUpdate(_ context.Context, userKey string, id uuid.UUID) (*domain.FocusSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	fs, ok := r.s.sessions[id]
	if !ok || fs.UserKey != userKey {
		return nil, fmt.Errorf("focus_session %s: %w", id, domain.ErrNotFound)
	}
	return &fs, nil
}

// GetOpen returns domain.ErrNotFound when the user has no open session.
func (r *SessionRepo) GetOpen(_ context.Context, userKey string) (*domain.FocusSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, fs := range r.s.sessions {
		if fs.UserKey == userKey && fs.IsOpen() {
			return &fs, nil
		}
	}
	return nil, fmt.Errorf("focus_session open for %s: %w", userKey, domain.ErrNotFound)
}

// Close persists the scored result. It fails with domain.ErrInvalidState if
// the stored session is already closed.
func (r *SessionRepo) Close(ctx context.Context, fs *domain.FocusSession) error {
	defer r.s.lockWrite(ctx)()

	existing, ok := r.s.sessions[fs.ID]
	if !ok || existing.UserKey != fs.UserKey {
		return fmt.Errorf("focus_session %s: %w", fs.ID, domain.ErrNotFound)
	}
	if !existing.IsOpen() {
		return domain.NewInvalidStateError("focus_session "+fs.ID.String(), "already closed")
	}
	r.s.sessions[fs.ID] = *fs
	return nil
}

// History summarises the user's closed sessions of type ct, ignoring exclude.
func (r *SessionRepo) History(_ context.Context, userKey string, ct domain.ChallengeType, exclude uuid.UUID) (domain.SessionHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var h domain.SessionHistory
	for id, fs := range r.s.sessions {
		if id == exclude || fs.UserKey != userKey || fs.IsOpen() {
			continue
		}
		if fs.ChallengeType == nil || *fs.ChallengeType != ct {
			continue
		}
		if !h.HasPrior || fs.ActionsCompleted > h.BestActions {
			h.BestActions = fs.ActionsCompleted
		}
		h.HasPrior = true
	}
	return h, nil
}

// ListByUser returns the user's sessions, newest first. limit <= 0 means all.
func (r *SessionRepo) ListByUser(_ context.Context, userKey string, limit int) ([]domain.FocusSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.FocusSession
	for _, fs := range r.s.sessions {
		if fs.UserKey == userKey {
			out = append(out, fs)
		}
	}
	slices.SortFunc(out, func(a, b domain.FocusSession) int {
		return b.StartTime.Compare(a.StartTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListOverdue returns open sessions of any user whose deadline is <= now,
// oldest first.
func (r *SessionRepo) ListOverdue(_ context.Context, now time.Time, limit int) ([]domain.FocusSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.FocusSession
	for _, fs := range r.s.sessions {
		if fs.IsOpen() && !fs.Deadline().After(now) {
			out = append(out, fs)
		}
	}
	slices.SortFunc(out, func(a, b domain.FocusSession) int {
		return a.StartTime.Compare(b.StartTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
