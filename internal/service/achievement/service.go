// Package achievement unlocks achievements from a user's focus session history.
package achievement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/pkg/ctxutil"
)

type achievementRepo interface {
	Insert(ctx context.Context, a *domain.Achievement) (bool, error)
	ListByUser(ctx context.Context, userKey string) ([]domain.Achievement, error)
}

type sessionLister interface {
	ListByUser(ctx context.Context, userKey string, limit int) ([]domain.FocusSession, error)
}

type timeSource interface {
	Now() time.Time
}

type recorder interface {
	AchievementUnlocked(achievementType string)
}

// Service implements achievement evaluation.
type Service struct {
	achievements achievementRepo
	sessions     sessionLister
	clock        timeSource
	metrics      recorder
	log          *slog.Logger
}

// NewService creates a new achievement service.
func NewService(log *slog.Logger, achievements achievementRepo, sessions sessionLister, clk timeSource, metrics recorder) *Service {
	return &Service{
		achievements: achievements,
		sessions:     sessions,
		clock:        clk,
		metrics:      metrics,
		log:          log.With("service", "achievement"),
	}
}

// Evaluate unlocks every achievement the user has earned but not yet stored
// and returns the newly unlocked ones. Unlocking grants no XP.
func (s *Service) Evaluate(ctx context.Context, userKey string) ([]domain.Achievement, error) {
	sessions, err := s.sessions.ListByUser(ctx, userKey, 0)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	now := s.clock.Now()
	var unlocked []domain.Achievement
	for _, t := range domain.EarnedAchievements(sessions, now) {
		def, _ := domain.LookupAchievement(t)
		a := domain.Achievement{
			ID:          uuid.New(),
			UserKey:     userKey,
			Type:        t,
			Title:       def.Title,
			Description: def.Description,
			UnlockedAt:  now,
		}

		inserted, err := s.achievements.Insert(ctx, &a)
		if err != nil {
			return unlocked, fmt.Errorf("insert achievement %s: %w", t, err)
		}
		if !inserted {
			continue
		}

		unlocked = append(unlocked, a)
		s.metrics.AchievementUnlocked(string(t))
		s.log.InfoContext(ctx, "achievement unlocked",
			slog.String("user_key", userKey),
			slog.String("achievement", string(t)),
		)
	}

	return unlocked, nil
}

// List returns the caller's achievements, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Achievement, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	list, err := s.achievements.ListByUser(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return list, nil
}
