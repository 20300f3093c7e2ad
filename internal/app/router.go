package app

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/hustle-xp/internal/config"
	"github.com/heartmarshall/hustle-xp/internal/transport/middleware"
	"github.com/heartmarshall/hustle-xp/internal/transport/rest"
)

// NewRouter registers every route on a ServeMux and wraps it in the
// middleware chain.
func NewRouter(cfg *config.Config, c *Container, logger *slog.Logger) http.Handler {
	gameHandler := rest.NewGameHandler(c.Progress, c.Dashboard, logger)
	actionHandler := rest.NewActionHandler(c.Ledger, logger)
	todoHandler := rest.NewTodoHandler(c.Todo, logger)
	challengeHandler := rest.NewChallengeHandler(c.Challenge, logger)
	pomodoroHandler := rest.NewPomodoroHandler(c.Focus, logger)
	achievementHandler := rest.NewAchievementHandler(c.Achievement, logger)
	healthHandler := rest.NewHealthHandler(c.storage.pinger, c.StorageName, BuildVersion())

	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", healthHandler.Live)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /health", healthHandler.Health)

	mux.HandleFunc("GET /api/game-state", gameHandler.GameState)
	mux.HandleFunc("GET /api/overview", gameHandler.Overview)
	mux.HandleFunc("GET /api/levels", gameHandler.Levels)

	mux.HandleFunc("POST /api/actions", actionHandler.Record)
	mux.HandleFunc("GET /api/actions/today", actionHandler.Today)
	mux.HandleFunc("GET /api/actions/stats", actionHandler.Stats)

	mux.HandleFunc("POST /api/todos", todoHandler.Create)
	mux.HandleFunc("GET /api/todos", todoHandler.List)
	mux.HandleFunc("PATCH /api/todos/{id}", todoHandler.Update)
	mux.HandleFunc("DELETE /api/todos/{id}", todoHandler.Delete)

	mux.HandleFunc("POST /api/challenges", challengeHandler.Create)
	mux.HandleFunc("GET /api/challenges", challengeHandler.List)
	mux.HandleFunc("GET /api/challenges/active", challengeHandler.Active)
	mux.HandleFunc("GET /api/challenges/{id}", challengeHandler.Get)
	mux.HandleFunc("PATCH /api/challenges/{id}", challengeHandler.Update)
	mux.HandleFunc("POST /api/challenges/{id}/start", challengeHandler.Start)
	mux.HandleFunc("POST /api/challenges/{id}/stop", challengeHandler.Stop)
	mux.HandleFunc("POST /api/challenges/{id}/increment", challengeHandler.Increment)

	mux.HandleFunc("POST /api/pomodoro/start", pomodoroHandler.Start)
	mux.HandleFunc("POST /api/pomodoro/{id}/end", pomodoroHandler.End)
	mux.HandleFunc("GET /api/pomodoro/current", pomodoroHandler.Current)
	mux.HandleFunc("GET /api/pomodoro/records", pomodoroHandler.Records)

	mux.HandleFunc("GET /api/achievements", achievementHandler.List)

	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}))
	}

	var rateLimit, idempotency middleware.Middleware
	if cfg.RateLimit.Enabled {
		rateLimit = middleware.NewRateLimiter().Limit(cfg.RateLimit.PerMinute)
	}
	if cfg.Idempotency.Enabled {
		idempotency = middleware.NewIdempotency(cfg.Idempotency.TTL, logger).Middleware()
	}

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		middleware.UserKey(),
		rateLimit,
		idempotency,
		middleware.When(cfg.Metrics.Enabled, middleware.Metrics(c.Metrics)),
	)

	return chain(mux)
}
