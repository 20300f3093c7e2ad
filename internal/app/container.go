package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/heartmarshall/hustle-xp/internal/config"
	"github.com/heartmarshall/hustle-xp/internal/metrics"
	"github.com/heartmarshall/hustle-xp/internal/service/achievement"
	"github.com/heartmarshall/hustle-xp/internal/service/challenge"
	"github.com/heartmarshall/hustle-xp/internal/service/dashboard"
	"github.com/heartmarshall/hustle-xp/internal/service/focus"
	"github.com/heartmarshall/hustle-xp/internal/service/ledger"
	"github.com/heartmarshall/hustle-xp/internal/service/progress"
	"github.com/heartmarshall/hustle-xp/internal/service/todo"
	"github.com/heartmarshall/hustle-xp/pkg/clock"
)

// sweepBatch caps the sessions closed by one scheduler tick.
const sweepBatch = 100

// Container holds the wired services. Both binaries build one.
type Container struct {
	Progress    *progress.Service
	Ledger      *ledger.Service
	Challenge   *challenge.Service
	Focus       *focus.Service
	Achievement *achievement.Service
	Todo        *todo.Service
	Dashboard   *dashboard.Service
	Metrics     *metrics.Metrics
	Registry    *prometheus.Registry
	StorageName string

	storage *storage
	clock   timeSource
}

type timeSource interface {
	Now() time.Time
}

// NewContainer opens the configured storage and wires every service on top
// of it. Call Close when done.
func NewContainer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Container, error) {
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return newContainer(cfg, log, st, clock.Real{}), nil
}

func newContainer(cfg *config.Config, log *slog.Logger, st *storage, clk timeSource) *Container {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	loc := cfg.Game.Location

	progressSvc := progress.NewService(log, st.progress, st.tx, clk, m, loc)
	challengeSvc := challenge.NewService(log, st.goals, st.tx, clk, m)
	ledgerSvc := ledger.NewService(log, st.actions, progressSvc, challengeSvc, st.tx, clk, m, loc)
	achievementSvc := achievement.NewService(log, st.achievements, st.sessions, clk, m)
	focusSvc := focus.NewService(log, st.sessions, st.actions, progressSvc, achievementSvc, st.tx, clk, m, focus.Config{
		MaxDuration:         cfg.Game.MaxSessionDuration,
		DefaultRecordsLimit: cfg.Game.DefaultRecordsLimit,
		SweepBatch:          sweepBatch,
	})
	todoSvc := todo.NewService(log, st.todos, progressSvc, st.tx, clk, m)
	dashboardSvc := dashboard.NewService(log, progressSvc, ledgerSvc, challengeSvc, focusSvc)

	return &Container{
		Progress:    progressSvc,
		Ledger:      ledgerSvc,
		Challenge:   challengeSvc,
		Focus:       focusSvc,
		Achievement: achievementSvc,
		Todo:        todoSvc,
		Dashboard:   dashboardSvc,
		Metrics:     m,
		Registry:    reg,
		StorageName: st.driver,
		storage:     st,
		clock:       clk,
	}
}

// Close releases the storage backend.
func (c *Container) Close() {
	c.storage.close()
}
