// Package challenge tracks target-count goals and completes them when their
// counter reaches the target.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type goalRepo interface {
	Create(ctx context.Context, g *domain.ChallengeGoal) error
	GetByID(ctx context.Context, userKey string, id uuid.UUID) (*domain.ChallengeGoal, error)
	GetByIDForUpdate(ctx context.Context, userKey string, id uuid.UUID) (*domain.ChallengeGoal, error)
	GetActive(ctx context.Context, userKey string) (*domain.ChallengeGoal, error)
	GetActiveForUpdate(ctx context.Context, userKey string) (*domain.ChallengeGoal, error)
	List(ctx context.Context, userKey string, limit int) ([]domain.ChallengeGoal, error)
	Update(ctx context.Context, g *domain.ChallengeGoal) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type timeSource interface {
	Now() time.Time
}

type recorder interface {
	GoalCompleted(challengeType string)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the challenge tracker.
type Service struct {
	goals   goalRepo
	tx      txManager
	clock   timeSource
	metrics recorder
	log     *slog.Logger
}

// NewService creates a new challenge service.
func NewService(log *slog.Logger, goals goalRepo, tx txManager, clk timeSource, metrics recorder) *Service {
	return &Service{
		goals:   goals,
		tx:      tx,
		clock:   clk,
		metrics: metrics,
		log:     log.With("service", "challenge"),
	}
}

// CreateGoal stores a new inactive goal with a zero counter.
func (s *Service) CreateGoal(ctx context.Context, input CreateGoalInput) (*domain.ChallengeGoal, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	g := &domain.ChallengeGoal{
		ID:                   uuid.New(),
		UserKey:              userKey,
		Type:                 domain.ChallengeType(input.Type),
		Target:               input.Target,
		TimeLimitSeconds:     input.TimeLimitSeconds,
		TimeRemainingSeconds: input.TimeLimitSeconds,
		CreatedAt:            s.clock.Now(),
	}
	if err := s.goals.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}

	s.log.InfoContext(ctx, "goal created",
		slog.String("user_key", userKey),
		slog.String("goal_id", g.ID.String()),
		slog.String("type", g.Type.String()),
	)
	return g, nil
}

// StartGoal activates a goal. Starting an active goal returns it unchanged.
func (s *Service) StartGoal(ctx context.Context, id uuid.UUID) (*domain.ChallengeGoal, error) {
	return s.mutate(ctx, id, func(ctx context.Context, g *domain.ChallengeGoal) error {
		if g.Completed {
			return domain.NewInvalidStateError("challenge_goal "+g.ID.String(), "already completed")
		}
		if g.Active {
			return nil
		}

		active, err := s.goals.GetActiveForUpdate(ctx, g.UserKey)
		switch {
		case err == nil && active.ID != g.ID:
			return fmt.Errorf("goal %s is already active: %w", active.ID, domain.ErrConflict)
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("get active goal: %w", err)
		}

		now := s.clock.Now()
		g.Active = true
		g.StartedAt = &now
		return nil
	})
}

// StopGoal deactivates a goal and keeps its counter. The time spent active
// since the last start is taken off TimeRemainingSeconds. Stopping a
// completed or inactive goal is a no-op.
func (s *Service) StopGoal(ctx context.Context, id uuid.UUID) (*domain.ChallengeGoal, error) {
	return s.mutate(ctx, id, func(_ context.Context, g *domain.ChallengeGoal) error {
		if g.Completed || !g.Active {
			return nil
		}

		if g.StartedAt != nil {
			elapsed := int(s.clock.Now().Sub(*g.StartedAt) / time.Second)
			g.TimeRemainingSeconds = max(0, g.TimeRemainingSeconds-elapsed)
		}
		g.Active = false
		return nil
	})
}

// IncrementProgress adds delta (default 1, at most 10000) to the goal's
// counter.
func (s *Service) IncrementProgress(ctx context.Context, id uuid.UUID, delta int) (*domain.ChallengeGoal, error) {
	if delta == 0 {
		delta = 1
	}
	if delta < 0 || delta > maxTarget {
		return nil, domain.NewValidationError("delta", "must be between 1 and 10000")
	}

	return s.mutate(ctx, id, func(_ context.Context, g *domain.ChallengeGoal) error {
		if g.Completed {
			return domain.NewInvalidStateError("challenge_goal "+g.ID.String(), "already completed")
		}
		g.Current += delta
		return nil
	})
}

// UpdateGoal sets the counter, target or remaining time directly.
func (s *Service) UpdateGoal(ctx context.Context, id uuid.UUID, input UpdateGoalInput) (*domain.ChallengeGoal, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(_ context.Context, g *domain.ChallengeGoal) error {
		if g.Completed {
			return domain.NewInvalidStateError("challenge_goal "+g.ID.String(), "already completed")
		}
		if input.Current != nil {
			g.Current = *input.Current
		}
		if input.Target != nil {
			g.Target = *input.Target
		}
		if input.TimeRemainingSeconds != nil {
			g.TimeRemainingSeconds = *input.TimeRemainingSeconds
		}
		return nil
	})
}

// ActiveGoal returns the caller's active goal, or nil if none.
func (s *Service) ActiveGoal(ctx context.Context) (*domain.ChallengeGoal, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	g, err := s.goals.GetActive(ctx, userKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active goal: %w", err)
	}
	return g, nil
}

// GetGoal returns one of the caller's goals.
func (s *Service) GetGoal(ctx context.Context, id uuid.UUID) (*domain.ChallengeGoal, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	g, err := s.goals.GetByID(ctx, userKey, id)
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

// List returns the caller's goals, newest first. limit <= 0 means all.
func (s *Service) List(ctx context.Context, limit int) ([]domain.ChallengeGoal, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	goals, err := s.goals.List(ctx, userKey, limit)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// TrackAction advances the user's active goal by one when it tracks
// actionType. It returns the updated goal, or nil when nothing matched.
// It runs inside the caller's transaction.
func (s *Service) TrackAction(ctx context.Context, userKey string, actionType domain.ActionType) (*domain.ChallengeGoal, error) {
	g, err := s.goals.GetActiveForUpdate(ctx, userKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active goal: %w", err)
	}
	if !g.Tracks(actionType) {
		return nil, nil
	}

	g.Current++
	if err := s.persist(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// mutate locks the caller's goal, applies fn and persists the result in one
// transaction.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, g *domain.ChallengeGoal) error) (*domain.ChallengeGoal, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	var out *domain.ChallengeGoal
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		g, err := s.goals.GetByIDForUpdate(ctx, userKey, id)
		if err != nil {
			return fmt.Errorf("lock goal: %w", err)
		}

		if err := fn(ctx, g); err != nil {
			return err
		}
		if err := s.persist(ctx, g); err != nil {
			return err
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// persist is the single write path for goals. It settles completion before
// every update.
func (s *Service) persist(ctx context.Context, g *domain.ChallengeGoal) error {
	completed := g.Settle(s.clock.Now())

	if err := s.goals.Update(ctx, g); err != nil {
		return fmt.Errorf("update goal: %w", err)
	}

	if completed {
		s.metrics.GoalCompleted(g.Type.String())
		s.log.InfoContext(ctx, "goal completed",
			slog.String("user_key", g.UserKey),
			slog.String("goal_id", g.ID.String()),
			slog.Int("target", g.Target),
		)
	}
	return nil
}
