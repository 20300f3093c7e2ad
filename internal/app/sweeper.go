package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const sweepTimeout = 30 * time.Second

type overdueExpirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

// Sweeper closes focus sessions that ran past the maximum duration. It runs
// ExpireOverdue on a gocron duration job; a tick that is still running when
// the next one fires is rescheduled, not stacked.
type Sweeper struct {
	scheduler gocron.Scheduler
	expirer   overdueExpirer
	clock     timeSource
	log       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSweeper registers the sweep job. Nothing runs until Start.
func NewSweeper(expirer overdueExpirer, clk timeSource, interval time.Duration, logger *slog.Logger) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Sweeper{
		scheduler: scheduler,
		expirer:   expirer,
		clock:     clk,
		log:       logger.With("job", "session_sweep"),
		ctx:       ctx,
		cancel:    cancel,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { s.sweep(s.ctx) }),
		gocron.WithName("expire-overdue-sessions"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("register sweep job: %w", err)
	}

	return s, nil
}

// Start begins scheduling.
func (s *Sweeper) Start() {
	s.scheduler.Start()
	s.log.Info("session sweeper started")
}

// Stop cancels a running sweep and waits for the scheduler to exit.
func (s *Sweeper) Stop() error {
	s.cancel()
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	s.log.Info("session sweeper stopped")
	return nil
}

func (s *Sweeper) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := s.expirer.ExpireOverdue(ctx, s.clock.Now())
	if err != nil {
		s.log.ErrorContext(ctx, "sweep failed", slog.Int("expired", n), slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		s.log.InfoContext(ctx, "expired overdue sessions", slog.Int("count", n))
	}
}
