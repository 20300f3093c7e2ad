// Package focus runs timed focus sessions and scores them when they end.
package focus

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

type sessionRepo interface {
	Create(ctx context.Context, s *domain.FocusSession) error
	GetByIDForUpdate(ctx context.Context, userKey string, id uuid.UUID) (*domain.FocusSession, error)
	GetOpen(ctx context.Context, userKey string) (*domain.FocusSession, error)
	Close(ctx context.Context, s *domain.FocusSession) error
	History(ctx context.Context, userKey string, ct domain.ChallengeType, exclude uuid.UUID) (domain.SessionHistory, error)
	ListByUser(ctx context.Context, userKey string, limit int) ([]domain.FocusSession, error)
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.FocusSession, error)
}

type actionCounter interface {
	CountBetween(ctx context.Context, userKey string, actionType *domain.ActionType, from, to time.Time) (int, error)
}

type awarder interface {
	Award(ctx context.Context, userKey string, amount int, source string) (*domain.UserProgress, error)
}

type achievementEvaluator interface {
	Evaluate(ctx context.Context, userKey string) ([]domain.Achievement, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type timeSource interface {
	Now() time.Time
}

type recorder interface {
	SessionClosed(bonusKind string, completed bool)
	SessionsExpired(n int)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config holds the session limits.
type Config struct {
	MaxDuration         time.Duration
	DefaultRecordsLimit int
	// SweepBatch caps how many overdue sessions one ExpireOverdue call closes.
	SweepBatch int
}

// Service implements the focus session engine.
type Service struct {
	sessions     sessionRepo
	actions      actionCounter
	progress     awarder
	achievements achievementEvaluator
	tx           txManager
	clock        timeSource
	metrics      recorder
	cfg          Config
	log          *slog.Logger
}

// NewService creates a new focus service.
func NewService(
	log *slog.Logger,
	sessions sessionRepo,
	actions actionCounter,
	progress awarder,
	achievements achievementEvaluator,
	tx txManager,
	clk timeSource,
	metrics recorder,
	cfg Config,
) *Service {
	if cfg.DefaultRecordsLimit <= 0 {
		cfg.DefaultRecordsLimit = 50
	}
	if cfg.SweepBatch <= 0 {
		cfg.SweepBatch = 100
	}
	return &Service{
		sessions:     sessions,
		actions:      actions,
		progress:     progress,
		achievements: achievements,
		tx:           tx,
		clock:        clk,
		metrics:      metrics,
		cfg:          cfg,
		log:          log.With("service", "focus"),
	}
}

// EndResult is the outcome of closing a session.
type EndResult struct {
	Session domain.FocusSession
	Score   domain.SessionScore
	// Progress is nil when the session earned no XP.
	Progress *domain.UserProgress
	Unlocked []domain.Achievement
}

// StartSession opens a session for the caller. A user has at most one open
// session; a second start fails with domain.ErrConflict.
func (s *Service) StartSession(ctx context.Context, input StartSessionInput) (*domain.FocusSession, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if s.cfg.MaxDuration > 0 && time.Duration(input.DurationSeconds)*time.Second > s.cfg.MaxDuration {
		return nil, domain.NewValidationError("duration_seconds", "exceeds the maximum session length")
	}

	now := s.clock.Now()
	fs := &domain.FocusSession{
		ID:              uuid.New(),
		UserKey:         userKey,
		StartTime:       now,
		DurationSeconds: input.DurationSeconds,
		CreatedAt:       now,
	}
	if input.ChallengeType != nil {
		ct := domain.ChallengeType(*input.ChallengeType)
		fs.ChallengeType = &ct
	}

	if err := s.sessions.Create(ctx, fs); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.InfoContext(ctx, "session started",
		slog.String("user_key", userKey),
		slog.String("session_id", fs.ID.String()),
		slog.Int("duration_seconds", fs.DurationSeconds),
	)
	return fs, nil
}

// EndSession scores and closes an open session and awards its XP. Ending a
// closed session fails with domain.ErrInvalidState and changes nothing.
func (s *Service) EndSession(ctx context.Context, input EndSessionInput) (*EndResult, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var result *EndResult
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		fs, err := s.sessions.GetByIDForUpdate(ctx, userKey, input.SessionID)
		if err != nil {
			return fmt.Errorf("lock session: %w", err)
		}

		result, err = s.close(ctx, fs, s.clock.Now(), input.ActionsCompleted, input.Completed)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SessionClosed(string(result.Score.Kind), result.Session.Completed)
	result.Unlocked = s.evaluate(ctx, userKey)
	return result, nil
}

// OpenSession returns the caller's open session, or nil if none.
func (s *Service) OpenSession(ctx context.Context) (*domain.FocusSession, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	fs, err := s.sessions.GetOpen(ctx, userKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open session: %w", err)
	}
	return fs, nil
}

// Records returns the caller's sessions, newest first. limit <= 0 uses the
// configured default.
func (s *Service) Records(ctx context.Context, limit int) ([]domain.FocusSession, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if limit <= 0 {
		limit = s.cfg.DefaultRecordsLimit
	}

	records, err := s.sessions.ListByUser(ctx, userKey, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return records, nil
}

// ExpireOverdue closes every open session whose deadline is at or before now,
// as completed. The action count is taken from the ledger over the session's
// window: events of the tracked action, or all events for a freeform session.
// A session that fails to close is logged and skipped; the rest of the batch
// still runs. It returns how many sessions it closed and the joined failures.
func (s *Service) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.sessions.ListOverdue(ctx, now, s.cfg.SweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list overdue sessions: %w", err)
	}

	closed := 0
	var failed []error
	for _, candidate := range overdue {
		var result *EndResult
		err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
			fs, err := s.sessions.GetByIDForUpdate(ctx, candidate.UserKey, candidate.ID)
			if err != nil {
				return fmt.Errorf("lock session: %w", err)
			}
			if !fs.IsOpen() {
				return nil
			}

			actions, err := s.countWindow(ctx, fs)
			if err != nil {
				return err
			}

			result, err = s.close(ctx, fs, fs.Deadline(), actions, true)
			return err
		})
		if err != nil {
			s.log.ErrorContext(ctx, "expire session failed",
				slog.String("session_id", candidate.ID.String()),
				slog.String("user_key", candidate.UserKey),
				slog.String("error", err.Error()),
			)
			failed = append(failed, fmt.Errorf("expire session %s: %w", candidate.ID, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if result == nil {
			continue
		}

		closed++
		s.metrics.SessionClosed(string(result.Score.Kind), true)
		s.evaluate(ctx, candidate.UserKey)
	}

	if closed > 0 {
		s.metrics.SessionsExpired(closed)
		s.log.InfoContext(ctx, "overdue sessions expired", slog.Int("count", closed))
	}
	return closed, errors.Join(failed...)
}

// close scores fs and persists the result. It runs inside a transaction that
// holds the lock on fs.
func (s *Service) close(ctx context.Context, fs *domain.FocusSession, end time.Time, actions int, completed bool) (*EndResult, error) {
	if !fs.IsOpen() {
		return nil, domain.NewInvalidStateError("focus_session "+fs.ID.String(), "already closed")
	}

	var h domain.SessionHistory
	if fs.ChallengeType != nil {
		var err error
		h, err = s.sessions.History(ctx, fs.UserKey, *fs.ChallengeType, fs.ID)
		if err != nil {
			return nil, fmt.Errorf("session history: %w", err)
		}
	}

	score := domain.ScoreSession(actions, completed, fs.ChallengeType != nil, h)
	fs.Close(end, actions, completed, score)
	if err := s.sessions.Close(ctx, fs); err != nil {
		return nil, fmt.Errorf("close session: %w", err)
	}

	result := &EndResult{Session: *fs, Score: score}
	if total := score.Total(); total > 0 {
		p, err := s.progress.Award(ctx, fs.UserKey, total, "focus_session")
		if err != nil {
			return nil, fmt.Errorf("award session xp: %w", err)
		}
		result.Progress = p
	}

	s.log.InfoContext(ctx, "session closed",
		slog.String("user_key", fs.UserKey),
		slog.String("session_id", fs.ID.String()),
		slog.Int("actions", actions),
		slog.Int("xp", score.BaseXP),
		slog.Int("bonus_xp", score.BonusXP),
		slog.String("bonus", string(score.Kind)),
	)
	return result, nil
}

func (s *Service) countWindow(ctx context.Context, fs *domain.FocusSession) (int, error) {
	var tracked *domain.ActionType
	if fs.ChallengeType != nil {
		if a, ok := fs.ChallengeType.TrackedAction(); ok {
			tracked = &a
		}
	}

	n, err := s.actions.CountBetween(ctx, fs.UserKey, tracked, fs.StartTime, fs.Deadline())
	if err != nil {
		return 0, fmt.Errorf("count session actions: %w", err)
	}
	return min(n, maxActionsPerSession), nil
}

// evaluate unlocks achievements after a session closed. Failures are logged
// only: the session result is already committed.
func (s *Service) evaluate(ctx context.Context, userKey string) []domain.Achievement {
	unlocked, err := s.achievements.Evaluate(ctx, userKey)
	if err != nil {
		s.log.ErrorContext(ctx, "evaluate achievements",
			slog.String("user_key", userKey),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return unlocked
}
