package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/internal/service/dashboard"
	"github.com/heartmarshall/hustle-xp/internal/service/progress"
)

type progressService interface {
	GetProgress(ctx context.Context) (*progress.View, error)
}

type overviewService interface {
	Overview(ctx context.Context) (*dashboard.Overview, error)
}

// GameHandler serves the progress read endpoints.
type GameHandler struct {
	progress progressService
	overview overviewService
	log      *slog.Logger
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(progress progressService, overview overviewService, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		progress: progress,
		overview: overview,
		log:      logger.With("handler", "game"),
	}
}

// GameState handles GET /api/game-state.
func (h *GameHandler) GameState(w http.ResponseWriter, r *http.Request) {
	view, err := h.progress.GetProgress(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameStateResponse(view))
}

// Overview handles GET /api/overview.
func (h *GameHandler) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := h.overview.Overview(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, overviewResponse{
		GameState:    toGameStateResponse(o.Progress),
		TodayActions: toActionResponses(o.TodayActions),
		Stats:        toStatsResponse(o.Stats),
		Challenge:    toChallengeResponse(o.ActiveGoal),
		Session:      toSessionResponse(o.OpenSession),
	})
}

// Levels handles GET /api/levels. The table is static.
func (h *GameHandler) Levels(w http.ResponseWriter, r *http.Request) {
	out := make([]levelResponse, 0, len(domain.LevelThresholds))
	for _, th := range domain.LevelThresholds {
		out = append(out, levelResponse{
			Level:  th.Level,
			XP:     th.XP,
			Title:  domain.LevelTitle(th.Level),
			League: toLeagueResponse(domain.LeagueForLevel(th.Level)),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
