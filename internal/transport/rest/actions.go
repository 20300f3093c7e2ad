package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/internal/service/ledger"
)

type ledgerService interface {
	RecordAction(ctx context.Context, input ledger.RecordActionInput) (*ledger.RecordResult, error)
	ActionsOn(ctx context.Context, date string) ([]domain.ActionEvent, error)
	StatsSince(ctx context.Context, days int) (map[domain.ActionType]int, error)
}

// ActionHandler serves the action ledger endpoints.
type ActionHandler struct {
	svc ledgerService
	log *slog.Logger
}

// NewActionHandler creates an ActionHandler.
func NewActionHandler(svc ledgerService, logger *slog.Logger) *ActionHandler {
	return &ActionHandler{svc: svc, log: logger.With("handler", "actions")}
}

type recordActionRequest struct {
	Type    string `json:"type"`
	XPValue *int   `json:"xpValue"`
}

// Record handles POST /api/actions.
func (h *ActionHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.RecordAction(r.Context(), ledger.RecordActionInput{
		Type:    req.Type,
		XPValue: req.XPValue,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, recordActionResponse{
		Action:    toActionResponse(res.Event),
		GameState: toProgressResponse(res.Progress),
		Challenge: toChallengeResponse(res.Goal),
	})
}

// Today handles GET /api/actions/today. An optional ?date=YYYY-MM-DD reads
// another day.
func (h *ActionHandler) Today(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ActionsOn(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionResponses(events))
}

// Stats handles GET /api/actions/stats?days=N.
func (h *ActionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", ledger.DefaultStatsDays)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	stats, err := h.svc.StatsSince(r.Context(), days)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsResponse(stats))
}
