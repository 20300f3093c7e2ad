package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/hustle-xp/internal/domain"
)

type achievementService interface {
	List(ctx context.Context) ([]domain.Achievement, error)
}

// AchievementHandler serves GET /api/achievements.
type AchievementHandler struct {
	svc achievementService
	log *slog.Logger
}

// NewAchievementHandler creates an AchievementHandler.
func NewAchievementHandler(svc achievementService, logger *slog.Logger) *AchievementHandler {
	return &AchievementHandler{svc: svc, log: logger.With("handler", "achievements")}
}

// List returns the caller's unlocked achievements, newest first.
func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAchievementResponses(list))
}
