// Package progress owns the per-user XP aggregate: awarding experience,
// applying the daily rollover and the administrative reset.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type progressRepo interface {
	GetOrCreateForUpdate(ctx context.Context, seed domain.UserProgress) (*domain.UserProgress, error)
	Update(ctx context.Context, p *domain.UserProgress) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type timeSource interface {
	Now() time.Time
}

type recorder interface {
	XPAwarded(source string, amount int)
	LevelsGained(n int)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the progress business logic.
type Service struct {
	progress progressRepo
	tx       txManager
	clock    timeSource
	metrics  recorder
	loc      *time.Location
	log      *slog.Logger
}

// NewService creates a new progress service. loc decides where "today" ends.
func NewService(
	log *slog.Logger,
	progress progressRepo,
	tx txManager,
	clk timeSource,
	metrics recorder,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		progress: progress,
		tx:       tx,
		clock:    clk,
		metrics:  metrics,
		loc:      loc,
		log:      log.With("service", "progress"),
	}
}

// View is the progress aggregate together with its derived presentation values.
type View struct {
	Progress domain.UserProgress
	League   domain.League
	Title    string
	Level    domain.LevelProgress
}

func newView(p domain.UserProgress) *View {
	return &View{
		Progress: p,
		League:   domain.LeagueForLevel(p.CurrentLevel),
		Title:    domain.LevelTitle(p.CurrentLevel),
		Level:    domain.ProgressForXP(p.CumulativeXP),
	}
}

// Today returns the current calendar date in the configured timezone.
func (s *Service) Today() string {
	return domain.DateIn(s.clock.Now(), s.loc)
}

// Award adds amount to the user's progress, creating the row on first use.
// It must run inside the caller's transaction so the lock taken on the
// progress row covers the caller's other writes.
func (s *Service) Award(ctx context.Context, userKey string, amount int, source string) (*domain.UserProgress, error) {
	if amount < 0 {
		return nil, domain.NewValidationError("amount", "must not be negative")
	}

	now := s.clock.Now()
	today := domain.DateIn(now, s.loc)

	p, err := s.progress.GetOrCreateForUpdate(ctx, domain.NewUserProgress(userKey, today, now))
	if err != nil {
		return nil, fmt.Errorf("lock progress: %w", err)
	}

	gained := p.Award(amount, today)
	if err := s.progress.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}

	s.metrics.XPAwarded(source, amount)
	if gained > 0 {
		s.metrics.LevelsGained(gained)
		s.log.InfoContext(ctx, "level up",
			slog.String("user_key", userKey),
			slog.Int("level", p.CurrentLevel),
			slog.String("source", source),
		)
	}

	return p, nil
}

// GetProgress returns the caller's progress. A new user gets a zeroed row and
// a stale row is rolled over and persisted before it is returned.
func (s *Service) GetProgress(ctx context.Context) (*View, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	var p *domain.UserProgress
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		today := domain.DateIn(now, s.loc)

		got, err := s.progress.GetOrCreateForUpdate(ctx, domain.NewUserProgress(userKey, today, now))
		if err != nil {
			return fmt.Errorf("lock progress: %w", err)
		}

		if got.IsStale(today) {
			rolled := domain.ApplyRollover(*got, today)
			if err := s.progress.Update(ctx, &rolled); err != nil {
				return fmt.Errorf("persist rollover: %w", err)
			}
			got = &rolled
		}

		p = got
		return nil
	})
	if err != nil {
		return nil, err
	}

	return newView(*p), nil
}

// Reset zeroes the user's counters. It is the only operation that lowers
// cumulative XP.
func (s *Service) Reset(ctx context.Context, userKey string) (*View, error) {
	if userKey == "" {
		return nil, domain.NewValidationError("user_key", "required")
	}

	var p *domain.UserProgress
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		today := domain.DateIn(now, s.loc)

		got, err := s.progress.GetOrCreateForUpdate(ctx, domain.NewUserProgress(userKey, today, now))
		if err != nil {
			return fmt.Errorf("lock progress: %w", err)
		}

		got.Reset(today)
		if err := s.progress.Update(ctx, got); err != nil {
			return fmt.Errorf("update progress: %w", err)
		}
		p = got
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "progress reset", slog.String("user_key", userKey))

	return newView(*p), nil
}
