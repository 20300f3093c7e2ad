package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/hustle-xp/internal/domain"
)

// TodoRepo stores to-do items.
type TodoRepo struct {
	s *Store
}

func (r *TodoRepo) Create(ctx context.Context, t *domain.Todo) error {
	defer r.s.lockWrite(ctx)()

	if _, ok := r.s.todos[t.ID]; ok {
		return fmt.Errorf("todo %s: %w", t.ID, domain.ErrAlreadyExists)
	}
	r.s.todos[t.ID] = *t
	return nil
}

func (r *TodoRepo) GetByIDForUpdate(_ context.Context, userKey string, id uuid.UUID) (*domain.Todo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.todos[id]
	if !ok || t.UserKey != userKey {
		return nil, fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}
	return &t, nil
}

func (r *TodoRepo) Update(ctx context.Context, t *domain.Todo) error {
	defer r.s.lockWrite(ctx)()

	existing, ok := r.s.todos[t.ID]
	if !ok || existing.UserKey != t.UserKey {
		return fmt.Errorf("todo %s: %w", t.ID, domain.ErrNotFound)
	}
	r.s.todos[t.ID] = *t
	return nil
}

func (r *TodoRepo) Delete(ctx context.Context, userKey string, id uuid.UUID) error {
	defer r.s.lockWrite(ctx)()

	t, ok := r.s.todos[id]
	if !ok || t.UserKey != userKey {
		return fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.todos, id)
	return nil
}

// List returns the user's todos, newest first.
func (r *TodoRepo) List(_ context.Context, userKey string) ([]domain.Todo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Todo
	for _, t := range r.s.todos {
		if t.UserKey == userKey {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b domain.Todo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
