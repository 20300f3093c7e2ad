// Package todo manages to-do items that pay XP the first time they are done.
package todo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/pkg/ctxutil"
)

type todoRepo interface {
	Create(ctx context.Context, t *domain.Todo) error
	GetByIDForUpdate(ctx context.Context, userKey string, id uuid.UUID) (*domain.Todo, error)
	Update(ctx context.Context, t *domain.Todo) error
	Delete(ctx context.Context, userKey string, id uuid.UUID) error
	List(ctx context.Context, userKey string) ([]domain.Todo, error)
}

type awarder interface {
	Award(ctx context.Context, userKey string, amount int, source string) (*domain.UserProgress, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type timeSource interface {
	Now() time.Time
}

type recorder interface {
	TodoRewarded()
}

// Service implements the todo business logic.
type Service struct {
	todos    todoRepo
	progress awarder
	tx       txManager
	clock    timeSource
	metrics  recorder
	log      *slog.Logger
}

// NewService creates a new todo service.
func NewService(log *slog.Logger, todos todoRepo, progress awarder, tx txManager, clk timeSource, metrics recorder) *Service {
	return &Service{
		todos:    todos,
		progress: progress,
		tx:       tx,
		clock:    clk,
		metrics:  metrics,
		log:      log.With("service", "todo"),
	}
}

// CreateTodo stores an open todo for the caller.
func (s *Service) CreateTodo(ctx context.Context, input CreateTodoInput) (*domain.Todo, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	t := &domain.Todo{
		ID:        uuid.New(),
		UserKey:   userKey,
		Title:     strings.TrimSpace(input.Title),
		XPValue:   input.XPValue,
		CreatedAt: s.clock.Now(),
	}
	if err := s.todos.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return t, nil
}

// ListTodos returns the caller's todos.
func (s *Service) ListTodos(ctx context.Context) ([]domain.Todo, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	todos, err := s.todos.List(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// UpdateResult is the updated todo and, when XP was paid, the new progress.
type UpdateResult struct {
	Todo     domain.Todo
	Progress *domain.UserProgress
}

// UpdateTodo renames or (un)completes a todo. The first completion pays the
// todo's XP; later completions never pay again.
func (s *Service) UpdateTodo(ctx context.Context, id uuid.UUID, input UpdateTodoInput) (*UpdateResult, error) {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		result   UpdateResult
		rewarded bool
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		t, err := s.todos.GetByIDForUpdate(ctx, userKey, id)
		if err != nil {
			return fmt.Errorf("lock todo: %w", err)
		}

		if input.Title != nil {
			t.Title = strings.TrimSpace(*input.Title)
		}
		if input.Completed != nil {
			rewarded = t.SetCompleted(*input.Completed, s.clock.Now())
		}

		if err := s.todos.Update(ctx, t); err != nil {
			return fmt.Errorf("update todo: %w", err)
		}

		if rewarded && t.XPValue > 0 {
			p, err := s.progress.Award(ctx, userKey, t.XPValue, "todo")
			if err != nil {
				return fmt.Errorf("award todo xp: %w", err)
			}
			result.Progress = p
		}

		result.Todo = *t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if rewarded {
		s.metrics.TodoRewarded()
		s.log.InfoContext(ctx, "todo rewarded",
			slog.String("user_key", userKey),
			slog.String("todo_id", id.String()),
			slog.Int("xp", result.Todo.XPValue),
		)
	}
	return &result, nil
}

// DeleteTodo removes one of the caller's todos. XP already paid is kept.
func (s *Service) DeleteTodo(ctx context.Context, id uuid.UUID) error {
	userKey, ok := ctxutil.UserKeyFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := s.todos.Delete(ctx, userKey, id); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}
