// Package dashboard assembles the overview screen from the other services.
package dashboard

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/internal/service/progress"
)

type progressReader interface {
	GetProgress(ctx context.Context) (*progress.View, error)
}

type actionReader interface {
	ActionsOn(ctx context.Context, date string) ([]domain.ActionEvent, error)
	StatsSince(ctx context.Context, days int) (map[domain.ActionType]int, error)
}

type goalReader interface {
	ActiveGoal(ctx context.Context) (*domain.ChallengeGoal, error)
}

type sessionReader interface {
	OpenSession(ctx context.Context) (*domain.FocusSession, error)
}

// StatsDays is the trailing window of the overview's action stats.
const StatsDays = 7

// Service builds the overview.
type Service struct {
	progress progressReader
	actions  actionReader
	goals    goalReader
	sessions sessionReader
	log      *slog.Logger
}

// NewService creates a new dashboard service.
func NewService(log *slog.Logger, progress progressReader, actions actionReader, goals goalReader, sessions sessionReader) *Service {
	return &Service{
		progress: progress,
		actions:  actions,
		goals:    goals,
		sessions: sessions,
		log:      log.With("service", "dashboard"),
	}
}

// Overview is everything the main screen shows at once.
type Overview struct {
	Progress     *progress.View
	TodayActions []domain.ActionEvent
	Stats        map[domain.ActionType]int
	ActiveGoal   *domain.ChallengeGoal
	OpenSession  *domain.FocusSession
}

// Overview fetches the caller's progress, today's actions, weekly stats, the
// active goal and the open session concurrently. The first error cancels the
// remaining reads.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var out Overview

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.progress.GetProgress(ctx)
		out.Progress = v
		return err
	})
	g.Go(func() error {
		events, err := s.actions.ActionsOn(ctx, "")
		out.TodayActions = events
		return err
	})
	g.Go(func() error {
		stats, err := s.actions.StatsSince(ctx, StatsDays)
		out.Stats = stats
		return err
	})
	g.Go(func() error {
		goal, err := s.goals.ActiveGoal(ctx)
		out.ActiveGoal = goal
		return err
	})
	g.Go(func() error {
		fs, err := s.sessions.OpenSession(ctx)
		out.OpenSession = fs
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.WarnContext(ctx, "overview failed", slog.String("error", err.Error()))
		return nil, err
	}
	return &out, nil
}
