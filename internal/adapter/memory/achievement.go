package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/heartmarshall/hustle-xp/internal/domain"
)

// AchievementRepo stores unlocked achievements, unique per (user, type).
type AchievementRepo struct {
	s *Store
}

// Insert stores a unless the user already has that type. Reports whether a
// new row was written.
func (r *AchievementRepo) Insert(ctx context.Context, a *domain.Achievement) (bool, error) {
	defer r.s.lockWrite(ctx)()

	byType, ok := r.s.achievements[a.UserKey]
	if !ok {
		byType = make(map[domain.AchievementType]domain.Achievement)
		r.s.achievements[a.UserKey] = byType
	}
	if _, exists := byType[a.Type]; exists {
		return false, nil
	}
	byType[a.Type] = *a
	return true, nil
}

// ListByUser returns the user's achievements, newest first.
func (r *AchievementRepo) ListByUser(_ context.Context, userKey string) ([]domain.Achievement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Achievement, 0, len(r.s.achievements[userKey]))
	for _, a := range r.s.achievements[userKey] {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b domain.Achievement) int {
		if c := b.UnlockedAt.Compare(a.UnlockedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.Type), string(b.Type))
	})
	return out, nil
}
