package memory

import (
	"context"
	"fmt"

	"github.com/heartmarshall/hustle-xp/internal/domain"
)

// ProgressRepo stores one UserProgress per user key.
type ProgressRepo struct {
	s *Store
}

// GetByUserKey returns domain.ErrNotFound if the user has no progress yet.
func (r *ProgressRepo) GetByUserKey(_ context.Context, userKey string) (*domain.UserProgress, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.progress[userKey]
	if !ok {
		return nil, fmt.Errorf("user_progress %s: %w", userKey, domain.ErrNotFound)
	}
	return &p, nil
}

// GetOrCreateForUpdate returns the stored progress for seed.UserKey,
// inserting seed first when none exists.
func (r *ProgressRepo) GetOrCreateForUpdate(ctx context.Context, seed domain.UserProgress) (*domain.UserProgress, error) {
	defer r.s.lockWrite(ctx)()

	p, ok := r.s.progress[seed.UserKey]
	if !ok {
		r.s.progress[seed.UserKey] = seed
		p = seed
	}
	return &p, nil
}

// Update overwrites the counters of an existing row.
func (r *ProgressRepo) Update(ctx context.Context, p *domain.UserProgress) error {
	defer r.s.lockWrite(ctx)()

	existing, ok := r.s.progress[p.UserKey]
	if !ok {
		return fmt.Errorf("user_progress %s: %w", p.UserKey, domain.ErrNotFound)
	}
	if p.TodayXP > p.CumulativeXP || p.CumulativeXP < 0 || p.TodayXP < 0 {
		return fmt.Errorf("user_progress %s: %w", p.UserKey, domain.ErrValidation)
	}

	existing.CumulativeXP = p.CumulativeXP
	existing.CurrentLevel = p.CurrentLevel
	existing.TodayXP = p.TodayXP
	existing.LastResetDate = p.LastResetDate
	r.s.progress[p.UserKey] = existing
	return nil
}
