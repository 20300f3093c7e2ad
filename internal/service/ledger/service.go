// Package ledger records scored work actions and answers range queries over
// them.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/pkg/ctxutil"
)

// DefaultStatsDays is the stats window used when the caller passes none.
const DefaultStatsDays = 7

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type actionRepo interface {
	Append(ctx context.Context, e *domain.ActionEvent) error
	ListByDate(ctx context.Context, userKey, date string) ([]domain.ActionEvent, error)
	CountByType(ctx context.Context, userKey string, from, to time.Time) (map[domain.ActionType]int, error)
}

type awarder interface {
	Award(ctx context.Context, userKey string, amount int, source string) (*domain.UserProgress, error)
}

type goalTracker interface {
	TrackAction(ctx context.Context, userKey string, actionType domain.ActionType) (*domain.ChallengeGoal, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type timeSource interface {
	Now() time.Time
}

type recorder interface {
	ActionRecorded(actionType string)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the action ledger.
type Service struct {
	actions  actionRepo
	progress awarder
	goals    goalTracker
	tx       txManager
	clock    timeSource
	metrics  recorder
	loc      *time.Location
	log      *slog.Logger
}

// NewService creates a new ledger service.
func NewService(
	log *slog.Logger,
	actions actionRepo,
	progress awarder,
	goals goalTracker,
	tx txManager,
	clk timeSource,
	metrics recorder,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		actions:  actions,
		progress: progress,
		goals:    goals,
		tx:       tx,
		clock:    clk,
		metrics:  metrics,
		loc:      loc,
		log:      log.With("service", "ledger"),
	}
}

// RecordResult is what a recorded action changed.
type RecordResult struct {
	Event    domain.ActionEvent
	Progress domain.UserProgress
	// Goal is the active goal the action advanced, nil if none matched.
	Goal *domain.ChallengeGoal
}

// RecordAction appends an event, awards its XP and advances a matching active
// goal. All three writes commit together or not at all.
func (s *Service) RecordAction(ctx context.Context, input RecordActionInput) (*RecordResult, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	at := domain.ActionType(input.Type)
	now := s.clock.Now()
	event := domain.ActionEvent{
		ID:        uuid.New(),
		UserKey:   userKey,
		Type:      at,
		XPValue:   at.XP(),
		Timestamp: now,
		Date:      domain.DateIn(now, s.loc),
	}

	result := &RecordResult{Event: event}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.actions.Append(ctx, &event); err != nil {
			return fmt.Errorf("append action: %w", err)
		}

		p, err := s.progress.Award(ctx, userKey, event.XPValue, "action:"+at.String())
		if err != nil {
			return fmt.Errorf("award action xp: %w", err)
		}
		result.Progress = *p

		g, err := s.goals.TrackAction(ctx, userKey, at)
		if err != nil {
			return fmt.Errorf("track action: %w", err)
		}
		result.Goal = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ActionRecorded(at.String())
	s.log.InfoContext(ctx, "action recorded",
		slog.String("user_key", userKey),
		slog.String("type", at.String()),
		slog.Int("xp", event.XPValue),
	)

	return result, nil
}

// ActionsOn returns the caller's events on date, newest first. An empty date
// means today in the configured timezone.
func (s *Service) ActionsOn(ctx context.Context, date string) ([]domain.ActionEvent, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if date == "" {
		date = domain.DateIn(s.clock.Now(), s.loc)
	} else if err := validateDate(date); err != nil {
		return nil, err
	}

	events, err := s.actions.ListByDate(ctx, userKey, date)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	return events, nil
}

// StatsSince counts the caller's events per type over [now-days, now].
// Every known type is present in the result; days <= 0 means DefaultStatsDays.
func (s *Service) StatsSince(ctx context.Context, days int) (map[domain.ActionType]int, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if days <= 0 {
		days = DefaultStatsDays
	}

	now := s.clock.Now()
	counts, err := s.actions.CountByType(ctx, userKey, now.AddDate(0, 0, -days), now)
	if err != nil {
		return nil, fmt.Errorf("count actions: %w", err)
	}

	stats := make(map[domain.ActionType]int, len(domain.ActionTypes))
	for _, at := range domain.ActionTypes {
		stats[at] = counts[at]
	}
	return stats, nil
}
