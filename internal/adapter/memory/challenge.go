package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/hustle-xp/internal/domain"
)

// GoalRepo stores challenge goals. At most one goal per user may be active.
type GoalRepo struct {
	s *Store
}

// Create inserts g.
func (r *GoalRepo) Create(ctx context.Context, g *domain.ChallengeGoal) error {
	defer r.s.lockWrite(ctx)()

	if _, ok := r.s.goals[g.ID]; ok {
		return fmt.Errorf("challenge_goal %s: %w", g.ID, domain.ErrAlreadyExists)
	}
	if g.Active && r.activeLocked(g.UserKey, g.ID) != nil {
		return fmt.Errorf("challenge_goal %s: another goal is active: %w", g.ID, domain.ErrConflict)
	}
	r.s.goals[g.ID] = *g
	return nil
}

// GetByID returns the user's goal with id.
func (r *GoalRepo) GetByID(_ context.Context, userKey string, id uuid.UUID) (*domain.ChallengeGoal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.goals[id]
	if !ok || g.UserKey != userKey {
		return nil, fmt.Errorf("challenge_goal %s: %w", id, domain.ErrNotFound)
	}
	return &g, nil
}

// GetByIDForUpdate is GetByID; writers are already serialized by TxManager.
func (r *GoalRepo) GetByIDForUpdate(ctx context.Context, userKey string, id uuid.UUID) (*domain.ChallengeGoal, error) {
	return r.GetByID(ctx, userKey, id)
}

// GetActive returns domain.ErrNotFound when the user has no active goal.
func (r *GoalRepo) GetActive(_ context.Context, userKey string) (*domain.ChallengeGoal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g := r.activeLocked(userKey, uuid.Nil)
	if g == nil {
		return nil, fmt.Errorf("challenge_goal active for %s: %w", userKey, domain.ErrNotFound)
	}
	return g, nil
}

// GetActiveForUpdate is GetActive; writers are already serialized by TxManager.
func (r *GoalRepo) GetActiveForUpdate(ctx context.Context, userKey string) (*domain.ChallengeGoal, error) {
	return r.GetActive(ctx, userKey)
}

// List returns the user's goals, newest first. limit <= 0 means no limit.
func (r *GoalRepo) List(_ context.Context, userKey string, limit int) ([]domain.ChallengeGoal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.ChallengeGoal
	for _, g := range r.s.goals {
		if g.UserKey == userKey {
			out = append(out, g)
		}
	}
	slices.SortFunc(out, func(a, b domain.ChallengeGoal) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Update overwrites the mutable fields of g.
func (r *GoalRepo) Update(ctx context.Context, g *domain.ChallengeGoal) error {
	defer r.s.lockWrite(ctx)()

	existing, ok := r.s.goals[g.ID]
	if !ok || existing.UserKey != g.UserKey {
		return fmt.Errorf("challenge_goal %s: %w", g.ID, domain.ErrNotFound)
	}
	if g.Active && r.activeLocked(g.UserKey, g.ID) != nil {
		return fmt.Errorf("challenge_goal %s: another goal is active: %w", g.ID, domain.ErrConflict)
	}
	r.s.goals[g.ID] = *g
	return nil
}

// activeLocked finds the user's active goal other than except. Callers hold mu.
func (r *GoalRepo) activeLocked(userKey string, except uuid.UUID) *domain.ChallengeGoal {
	for id, g := range r.s.goals {
		if id != except && g.UserKey == userKey && g.Active {
			return &g
		}
	}
	return nil
}
