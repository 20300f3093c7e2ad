package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/internal/service/todo"
)

func TestTodoHandler_Create(t *testing.T) {
	t.Parallel()

	svc := &todoServiceMock{
		CreateTodoFunc: func(_ context.Context, input todo.CreateTodoInput) (*domain.Todo, error) {
			return &domain.Todo{ID: uuid.New(), UserKey: "default", Title: input.Title, XPValue: input.XPValue, CreatedAt: testNow}, nil
		},
	}
	h := NewTodoHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/todos", strings.NewReader(`{"title":"Ship it","xpValue":40}`)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp todoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Ship it", resp.Title)
	assert.Equal(t, 40, resp.XPValue)
	assert.False(t, resp.Completed)
	assert.Nil(t, resp.CompletedAt)
}

func TestTodoHandler_List_EmptyIsArray(t *testing.T) {
	t.Parallel()

	svc := &todoServiceMock{
		ListTodosFunc: func(context.Context) ([]domain.Todo, error) { return nil, nil },
	}
	h := NewTodoHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/todos", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTodoHandler_Update_FirstCompletionReturnsGameState(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	done := testNow
	var gotID uuid.UUID
	var gotInput todo.UpdateTodoInput
	svc := &todoServiceMock{
		UpdateTodoFunc: func(_ context.Context, tid uuid.UUID, input todo.UpdateTodoInput) (*todo.UpdateResult, error) {
			gotID, gotInput = tid, input
			return &todo.UpdateResult{
				Todo:     domain.Todo{ID: tid, Title: "Ship it", XPValue: 40, Completed: true, CompletedAt: &done, RewardedAt: &done},
				Progress: &domain.UserProgress{CumulativeXP: 140, CurrentLevel: 2, TodayXP: 40},
			}, nil
		},
	}
	h := NewTodoHandler(svc, discardLogger())

	req := httptest.NewRequest(http.MethodPatch, "/api/todos/"+id.String(), strings.NewReader(`{"completed":true}`))
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, gotID)
	require.NotNil(t, gotInput.Completed)
	assert.True(t, *gotInput.Completed)
	assert.Nil(t, gotInput.Title)

	var resp updateTodoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Todo.Rewarded)
	require.NotNil(t, resp.GameState)
	assert.Equal(t, 140, resp.GameState.CurrentXP)
}

func TestTodoHandler_Update_NoPayoutOmitsGameState(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	svc := &todoServiceMock{
		UpdateTodoFunc: func(_ context.Context, tid uuid.UUID, _ todo.UpdateTodoInput) (*todo.UpdateResult, error) {
			return &todo.UpdateResult{Todo: domain.Todo{ID: tid, Title: "Renamed"}}, nil
		},
	}
	h := NewTodoHandler(svc, discardLogger())

	req := httptest.NewRequest(http.MethodPatch, "/api/todos/"+id.String(), strings.NewReader(`{"title":"Renamed"}`))
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "gameState")
}

func TestTodoHandler_Update_BadID(t *testing.T) {
	t.Parallel()

	h := NewTodoHandler(&todoServiceMock{}, discardLogger())

	req := httptest.NewRequest(http.MethodPatch, "/api/todos/42", strings.NewReader(`{"completed":true}`))
	req.SetPathValue("id", "42")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTodoHandler_Delete(t *testing.T) {
	t.Parallel()

	existing := uuid.New()
	svc := &todoServiceMock{
		DeleteTodoFunc: func(_ context.Context, id uuid.UUID) error {
			if id != existing {
				return fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
			}
			return nil
		},
	}
	h := NewTodoHandler(svc, discardLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/todos/"+existing.String(), nil)
	req.SetPathValue("id", existing.String())
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	missing := uuid.New()
	req = httptest.NewRequest(http.MethodDelete, "/api/todos/"+missing.String(), nil)
	req.SetPathValue("id", missing.String())
	rec = httptest.NewRecorder()
	h.Delete(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
