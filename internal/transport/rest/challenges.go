package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/internal/service/challenge"
)

type challengeService interface {
	CreateGoal(ctx context.Context, input challenge.CreateGoalInput) (*domain.ChallengeGoal, error)
	StartGoal(ctx context.Context, id uuid.UUID) (*domain.ChallengeGoal, error)
	StopGoal(ctx context.Context, id uuid.UUID) (*domain.ChallengeGoal, error)
	IncrementProgress(ctx context.Context, id uuid.UUID, delta int) (*domain.ChallengeGoal, error)
	UpdateGoal(ctx context.Context, id uuid.UUID, input challenge.UpdateGoalInput) (*domain.ChallengeGoal, error)
	ActiveGoal(ctx context.Context) (*domain.ChallengeGoal, error)
	GetGoal(ctx context.Context, id uuid.UUID) (*domain.ChallengeGoal, error)
	List(ctx context.Context, limit int) ([]domain.ChallengeGoal, error)
}

// ChallengeHandler serves the challenge goal endpoints.
type ChallengeHandler struct {
	svc challengeService
	log *slog.Logger
}

// NewChallengeHandler creates a ChallengeHandler.
func NewChallengeHandler(svc challengeService, logger *slog.Logger) *ChallengeHandler {
	return &ChallengeHandler{svc: svc, log: logger.With("handler", "challenges")}
}

type createChallengeRequest struct {
	Type      string `json:"type"`
	Target    int    `json:"target"`
	TimeLimit int    `json:"timeLimit"`
}

type updateChallengeRequest struct {
	Current       *int `json:"current"`
	Target        *int `json:"target"`
	TimeRemaining *int `json:"timeRemaining"`
}

type incrementRequest struct {
	Delta int `json:"delta"`
}

// Create handles POST /api/challenges.
func (h *ChallengeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createChallengeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.svc.CreateGoal(r.Context(), challenge.CreateGoalInput{
		Type:             req.Type,
		Target:           req.Target,
		TimeLimitSeconds: req.TimeLimit,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChallengeResponse(g))
}

// List handles GET /api/challenges?limit=N.
func (h *ChallengeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	goals, err := h.svc.List(r.Context(), limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]*challengeResponse, 0, len(goals))
	for i := range goals {
		out = append(out, toChallengeResponse(&goals[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Active handles GET /api/challenges/active. The body is null when no goal
// is active.
func (h *ChallengeHandler) Active(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.ActiveGoal(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChallengeResponse(g))
}

// Get handles GET /api/challenges/{id}.
func (h *ChallengeHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.svc.GetGoal)
}

// Update handles PATCH /api/challenges/{id}.
func (h *ChallengeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req updateChallengeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.svc.UpdateGoal(r.Context(), id, challenge.UpdateGoalInput{
		Current:              req.Current,
		Target:               req.Target,
		TimeRemainingSeconds: req.TimeRemaining,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChallengeResponse(g))
}

// Start handles POST /api/challenges/{id}/start.
func (h *ChallengeHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.svc.StartGoal)
}

// Stop handles POST /api/challenges/{id}/stop.
func (h *ChallengeHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.svc.StopGoal)
}

// Increment handles POST /api/challenges/{id}/increment. The body is
// optional; a missing or zero delta counts as one.
func (h *ChallengeHandler) Increment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req incrementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.svc.IncrementProgress(r.Context(), id, req.Delta)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChallengeResponse(g))
}

func (h *ChallengeHandler) byID(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, uuid.UUID) (*domain.ChallengeGoal, error),
) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	g, err := op(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChallengeResponse(g))
}
