package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/internal/service/todo"
)

type todoService interface {
	CreateTodo(ctx context.Context, input todo.CreateTodoInput) (*domain.Todo, error)
	ListTodos(ctx context.Context) ([]domain.Todo, error)
	UpdateTodo(ctx context.Context, id uuid.UUID, input todo.UpdateTodoInput) (*todo.UpdateResult, error)
	DeleteTodo(ctx context.Context, id uuid.UUID) error
}

// TodoHandler serves the to-do endpoints.
type TodoHandler struct {
	svc todoService
	log *slog.Logger
}

// NewTodoHandler creates a TodoHandler.
func NewTodoHandler(svc todoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{svc: svc, log: logger.With("handler", "todos")}
}

type createTodoRequest struct {
	Title   string `json:"title"`
	XPValue int    `json:"xpValue"`
}

type updateTodoRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// Create handles POST /api/todos.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.svc.CreateTodo(r.Context(), todo.CreateTodoInput{Title: req.Title, XPValue: req.XPValue})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTodoResponse(*t))
}

// List handles GET /api/todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.svc.ListTodos(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		out = append(out, toTodoResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// Update handles PATCH /api/todos/{id}. Completing a todo for the first time
// also returns the updated game state.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req updateTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.UpdateTodo(r.Context(), id, todo.UpdateTodoInput{Title: req.Title, Completed: req.Completed})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := updateTodoResponse{Todo: toTodoResponse(res.Todo)}
	if res.Progress != nil {
		gs := toProgressResponse(*res.Progress)
		resp.GameState = &gs
	}
	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/todos/{id}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	if err := h.svc.DeleteTodo(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
