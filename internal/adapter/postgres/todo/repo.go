// Package todo implements the Todo repository using PostgreSQL.
package todo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/hustle-xp/internal/adapter/postgres"
	"github.com/heartmarshall/hustle-xp/internal/domain"
)

// Repo provides todo persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new todo repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const todoColumns = `id, user_key, title, xp_value, completed, completed_at, rewarded_at, created_at`

const createSQL = `
INSERT INTO todos (id, user_key, title, xp_value, completed, completed_at, rewarded_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const lockByIDSQL = `
SELECT ` + todoColumns + `
FROM todos
WHERE id = $1 AND user_key = $2
FOR UPDATE`

const updateSQL = `
UPDATE todos
SET title = $3, completed = $4, completed_at = $5, rewarded_at = $6
WHERE id = $1 AND user_key = $2`

const deleteSQL = `DELETE FROM todos WHERE id = $1 AND user_key = $2`

type todoRow struct {
	ID          uuid.UUID  `db:"id"`
	UserKey     string     `db:"user_key"`
	Title       string     `db:"title"`
	XPValue     int        `db:"xp_value"`
	Completed   bool       `db:"completed"`
	CompletedAt *time.Time `db:"completed_at"`
	RewardedAt  *time.Time `db:"rewarded_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

func (r todoRow) toDomain() domain.Todo {
	return domain.Todo{
		ID:          r.ID,
		UserKey:     r.UserKey,
		Title:       r.Title,
		XPValue:     r.XPValue,
		Completed:   r.Completed,
		CompletedAt: r.CompletedAt,
		RewardedAt:  r.RewardedAt,
		CreatedAt:   r.CreatedAt,
	}
}

// Create inserts t.
func (r *Repo) Create(ctx context.Context, t *domain.Todo) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, createSQL,
		t.ID, t.UserKey, t.Title, t.XPValue, t.Completed, t.CompletedAt, t.RewardedAt, t.CreatedAt.UTC(),
	)
	if err != nil {
		return postgres.MapError(err, "todo", t.ID)
	}
	return nil
}

// GetByIDForUpdate locks and returns the user's todo.
func (r *Repo) GetByIDForUpdate(ctx context.Context, userKey string, id uuid.UUID) (*domain.Todo, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var row todoRow
	err := q.QueryRow(ctx, lockByIDSQL, id, userKey).Scan(
		&row.ID,
		&row.UserKey,
		&row.Title,
		&row.XPValue,
		&row.Completed,
		&row.CompletedAt,
		&row.RewardedAt,
		&row.CreatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "todo", id)
	}
	t := row.toDomain()
	return &t, nil
}

// Update writes title, completion and reward state.
func (r *Repo) Update(ctx context.Context, t *domain.Todo) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, updateSQL, t.ID, t.UserKey, t.Title, t.Completed, t.CompletedAt, t.RewardedAt)
	if err != nil {
		return postgres.MapError(err, "todo", t.ID)
	}
	if tag.RowsAffected() == 0 {
		return postgres.MapError(pgx.ErrNoRows, "todo", t.ID)
	}
	return nil
}

// Delete removes the user's todo.
func (r *Repo) Delete(ctx context.Context, userKey string, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, deleteSQL, id, userKey)
	if err != nil {
		return postgres.MapError(err, "todo", id)
	}
	if tag.RowsAffected() == 0 {
		return postgres.MapError(pgx.ErrNoRows, "todo", id)
	}
	return nil
}

// List returns the user's todos, newest first.
func (r *Repo) List(ctx context.Context, userKey string) ([]domain.Todo, error) {
	sql, args, err := postgres.Builder().
		Select(todoColumns).
		From("todos").
		Where(squirrel.Eq{"user_key": userKey}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list todos query: %w", err)
	}

	var rows []todoRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	todos := make([]domain.Todo, len(rows))
	for i, row := range rows {
		todos[i] = row.toDomain()
	}
	return todos, nil
}
