package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/internal/service/focus"
)

type focusService interface {
	StartSession(ctx context.Context, input focus.StartSessionInput) (*domain.FocusSession, error)
	EndSession(ctx context.Context, input focus.EndSessionInput) (*focus.EndResult, error)
	OpenSession(ctx context.Context) (*domain.FocusSession, error)
	Records(ctx context.Context, limit int) ([]domain.FocusSession, error)
}

// PomodoroHandler serves the focus session endpoints.
type PomodoroHandler struct {
	svc focusService
	log *slog.Logger
}

// NewPomodoroHandler creates a PomodoroHandler.
func NewPomodoroHandler(svc focusService, logger *slog.Logger) *PomodoroHandler {
	return &PomodoroHandler{svc: svc, log: logger.With("handler", "pomodoro")}
}

type startSessionRequest struct {
	ChallengeType *string `json:"challengeType"`
	Duration      int     `json:"duration"`
}

type endSessionRequest struct {
	ActionsCompleted int  `json:"actionsCompleted"`
	Completed        bool `json:"completed"`
}

// Start handles POST /api/pomodoro/start. Duration is in seconds; a null or
// missing challengeType starts a freeform session.
func (h *PomodoroHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.svc.StartSession(r.Context(), focus.StartSessionInput{
		ChallengeType:   req.ChallengeType,
		DurationSeconds: req.Duration,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(s))
}

// End handles POST /api/pomodoro/{id}/end.
func (h *PomodoroHandler) End(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req endSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.EndSession(r.Context(), focus.EndSessionInput{
		SessionID:        id,
		ActionsCompleted: req.ActionsCompleted,
		Completed:        req.Completed,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := endSessionResponse{
		Session:      *toSessionResponse(&res.Session),
		BonusKind:    string(res.Score.Kind),
		TotalXP:      res.Score.Total(),
		Achievements: toAchievementResponses(res.Unlocked),
	}
	if res.Progress != nil {
		gs := toProgressResponse(*res.Progress)
		resp.GameState = &gs
	}
	writeJSON(w, http.StatusOK, resp)
}

// Current handles GET /api/pomodoro/current. The body is null when no
// session is open.
func (h *PomodoroHandler) Current(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.OpenSession(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// Records handles GET /api/pomodoro/records?limit=N, newest first.
func (h *PomodoroHandler) Records(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	sessions, err := h.svc.Records(r.Context(), limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]*sessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, toSessionResponse(&sessions[i]))
	}
	writeJSON(w, http.StatusOK, out)
}
