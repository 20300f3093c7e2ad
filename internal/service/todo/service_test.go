package todo

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/heartmarshall/hustle-xp/internal/adapter/memory"
	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/internal/metrics"
	"github.com/heartmarshall/hustle-xp/internal/service/progress"
	"github.com/heartmarshall/hustle-xp/pkg/clock"
	"github.com/heartmarshall/hustle-xp/pkg/ctxutil"
)

func newTestService(t *testing.T) (*Service, *progress.Service, *clock.Fixed) {
	t.Helper()

	store := memory.NewStore()
	tx := memory.NewTxManager(store)
	clk := clock.NewFixed(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
	m := metrics.New(prometheus.NewRegistry())
	progressSvc := progress.NewService(slog.Default(), store.Progress(), tx, clk, m, time.UTC)

	return NewService(slog.Default(), store.Todos(), progressSvc, tx, clk, m), progressSvc, clk
}

func boolPtr(b bool) *bool { return &b }

func TestService_CreateTodo_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := ctxutil.WithUserKey(context.Background(), "alice")

	tests := []struct {
		name    string
		input   CreateTodoInput
		wantErr bool
	}{
		{"valid", CreateTodoInput{Title: "Follow up with Acme", XPValue: 25}, false},
		{"zero xp", CreateTodoInput{Title: "Inbox zero", XPValue: 0}, false},
		{"max xp", CreateTodoInput{Title: "Ship it", XPValue: 500}, false},
		{"blank title", CreateTodoInput{Title: "   ", XPValue: 10}, true},
		{"title too long", CreateTodoInput{Title: strings.Repeat("a", 201), XPValue: 10}, true},
		{"negative xp", CreateTodoInput{Title: "x", XPValue: -1}, true},
		{"xp too high", CreateTodoInput{Title: "x", XPValue: 501}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTodo(ctx, tt.input)
			if tt.wantErr != errors.Is(err, domain.ErrValidation) {
				t.Errorf("got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_UpdateTodo_RewardsOnce(t *testing.T) {
	t.Parallel()

	svc, progressSvc, clk := newTestService(t)
	ctx := ctxutil.WithUserKey(context.Background(), "alice")

	todo, err := svc.CreateTodo(ctx, CreateTodoInput{Title: "Send proposal", XPValue: 40})
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}

	res, err := svc.UpdateTodo(ctx, todo.ID, UpdateTodoInput{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !res.Todo.Completed || res.Todo.RewardedAt == nil || res.Progress == nil || res.Progress.CumulativeXP != 40 {
		t.Fatalf("first completion: got %+v progress=%+v", res.Todo, res.Progress)
	}

	clk.Advance(time.Minute)
	res, err = svc.UpdateTodo(ctx, todo.ID, UpdateTodoInput{Completed: boolPtr(false)})
	if err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	if res.Todo.Completed || res.Todo.CompletedAt != nil || res.Progress != nil {
		t.Errorf("uncomplete: got %+v", res.Todo)
	}

	res, err = svc.UpdateTodo(ctx, todo.ID, UpdateTodoInput{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("recomplete: %v", err)
	}
	if res.Progress != nil {
		t.Errorf("re-completion paid XP again: %+v", res.Progress)
	}

	view, err := progressSvc.GetProgress(ctx)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if view.Progress.CumulativeXP != 40 {
		t.Errorf("CumulativeXP = %d, want 40", view.Progress.CumulativeXP)
	}
}

func TestService_UpdateTodo_Rename(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := ctxutil.WithUserKey(context.Background(), "alice")

	todo, err := svc.CreateTodo(ctx, CreateTodoInput{Title: "draft", XPValue: 10})
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}

	title := "  final copy  "
	res, err := svc.UpdateTodo(ctx, todo.ID, UpdateTodoInput{Title: &title})
	if err != nil {
		t.Fatalf("UpdateTodo: %v", err)
	}
	if res.Todo.Title != "final copy" || res.Todo.Completed {
		t.Errorf("got %+v", res.Todo)
	}

	if _, err := svc.UpdateTodo(ctx, todo.ID, UpdateTodoInput{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty update: got %v, want ErrValidation", err)
	}
}

func TestService_DeleteTodo(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := ctxutil.WithUserKey(context.Background(), "alice")

	todo, err := svc.CreateTodo(ctx, CreateTodoInput{Title: "tmp", XPValue: 5})
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}

	bob := ctxutil.WithUserKey(context.Background(), "bob")
	if err := svc.DeleteTodo(bob, todo.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("other user delete: got %v, want ErrNotFound", err)
	}

	if err := svc.DeleteTodo(ctx, todo.ID); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}
	if err := svc.DeleteTodo(ctx, todo.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
	if _, err := svc.UpdateTodo(ctx, uuid.New(), UpdateTodoInput{Completed: boolPtr(true)}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("update missing: got %v, want ErrNotFound", err)
	}
}

func TestService_ListTodos_NewestFirst(t *testing.T) {
	t.Parallel()

	svc, _, clk := newTestService(t)
	ctx := ctxutil.WithUserKey(context.Background(), "alice")

	for _, title := range []string{"first", "second", "third"} {
		if _, err := svc.CreateTodo(ctx, CreateTodoInput{Title: title, XPValue: 1}); err != nil {
			t.Fatalf("CreateTodo: %v", err)
		}
		clk.Advance(time.Second)
	}

	todos, err := svc.ListTodos(ctx)
	if err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	if len(todos) != 3 || todos[0].Title != "third" || todos[2].Title != "first" {
		t.Errorf("got %+v", todos)
	}
}
