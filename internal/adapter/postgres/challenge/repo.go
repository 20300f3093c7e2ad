// Package challenge implements the ChallengeGoal repository using PostgreSQL.
package challenge

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

// oneActiveIndex is the partial unique index allowing one active goal per user.
const oneActiveIndex = "challenge_goals_one_active_idx"

// Repo provides challenge goal persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new challenge goal repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const goalColumns = `id, user_key, challenge_type, target, current, time_limit_seconds,
	time_remaining_seconds, active, completed, started_at, completed_at, created_at`

const createSQL = `
INSERT INTO challenge_goals (id, user_key, challenge_type, target, current, time_limit_seconds,
	time_remaining_seconds, active, completed, started_at, completed_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`

const getByIDSQL = `
SELECT ` + goalColumns + `
FROM challenge_goals
WHERE id = $1 AND user_key = $2`

const lockByIDSQL = getByIDSQL + `
FOR UPDATE`

const getActiveSQL = `
SELECT ` + goalColumns + `
FROM challenge_goals
WHERE user_key = $1 AND active`

const lockActiveSQL = getActiveSQL + `
FOR UPDATE`

const updateSQL = `
UPDATE challenge_goals
SET target = $3, current = $4, time_remaining_seconds = $5, active = $6, completed = $7,
	started_at = $8, completed_at = $9, updated_at = now()
WHERE id = $1 AND user_key = $2`

type goalRow struct {
	ID                   uuid.UUID  `db:"id"`
	UserKey              string     `db:"user_key"`
	ChallengeType        string     `db:"challenge_type"`
	Target               int        `db:"target"`
	Current              int        `db:"current"`
	TimeLimitSeconds     int        `db:"time_limit_seconds"`
	TimeRemainingSeconds int        `db:"time_remaining_seconds"`
	Active               bool       `db:"active"`
	Completed            bool       `db:"completed"`
	StartedAt            *time.Time `db:"started_at"`
	CompletedAt          *time.Time `db:"completed_at"`
	CreatedAt            time.Time  `db:"created_at"`
}

func (r goalRow) toDomain() domain.ChallengeGoal {
	return domain.ChallengeGoal{
		ID:                   r.ID,
		UserKey:              r.UserKey,
		Type:                 domain.ChallengeType(r.ChallengeType),
		Target:               r.Target,
		Current:              r.Current,
		TimeLimitSeconds:     r.TimeLimitSeconds,
		TimeRemainingSeconds: r.TimeRemainingSeconds,
		Active:               r.Active,
		Completed:            r.Completed,
		StartedAt:            r.StartedAt,
		CompletedAt:          r.CompletedAt,
		CreatedAt:            r.CreatedAt,
	}
}

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Create inserts g.
func (r *Repo) Create(ctx context.Context, g *domain.ChallengeGoal) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, createSQL,
		g.ID, g.UserKey, string(g.Type), g.Target, g.Current, g.TimeLimitSeconds,
		g.TimeRemainingSeconds, g.Active, g.Completed, g.StartedAt, g.CompletedAt, g.CreatedAt.UTC(),
	)
	return r.writeError(err, g.ID)
}

// Update writes every mutable field of g.
func (r *Repo) Update(ctx context.Context, g *domain.ChallengeGoal) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, updateSQL,
		g.ID, g.UserKey, g.Target, g.Current, g.TimeRemainingSeconds, g.Active, g.Completed,
		g.StartedAt, g.CompletedAt,
	)
	if err != nil {
		return r.writeError(err, g.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("challenge_goal %s: %w", g.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) writeError(err error, id uuid.UUID) error {
	if err == nil {
		return nil
	}
	if postgres.IsUniqueViolation(err, oneActiveIndex) {
		return fmt.Errorf("challenge_goal %s: another goal is active: %w", id, domain.ErrConflict)
	}
	return postgres.MapError(err, "challenge_goal", id)
}

// GetByID returns the user's goal with id.
func (r *Repo) GetByID(ctx context.Context, userKey string, id uuid.UUID) (*domain.ChallengeGoal, error) {
	return r.getOne(ctx, getByIDSQL, id, id, userKey)
}

// GetByIDForUpdate locks and returns the user's goal with id.
func (r *Repo) GetByIDForUpdate(ctx context.Context, userKey string, id uuid.UUID) (*domain.ChallengeGoal, error) {
	return r.getOne(ctx, lockByIDSQL, id, id, userKey)
}

// GetActive returns domain.ErrNotFound when the user has no active goal.
func (r *Repo) GetActive(ctx context.Context, userKey string) (*domain.ChallengeGoal, error) {
	return r.getOne(ctx, getActiveSQL, userKey, userKey)
}

// GetActiveForUpdate locks and returns the user's active goal.
func (r *Repo) GetActiveForUpdate(ctx context.Context, userKey string) (*domain.ChallengeGoal, error) {
	return r.getOne(ctx, lockActiveSQL, userKey, userKey)
}

func (r *Repo) getOne(ctx context.Context, sql string, key any, args ...any) (*domain.ChallengeGoal, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	g, err := scanGoal(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "challenge_goal", key)
	}
	return g, nil
}

// List returns the user's goals, newest first. limit <= 0 means all.
func (r *Repo) List(ctx context.Context, userKey string, limit int) ([]domain.ChallengeGoal, error) {
	query := postgres.Builder().
		Select(goalColumns).
		From("challenge_goals").
		Where(squirrel.Eq{"user_key": userKey}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list goals query: %w", err)
	}

	var rows []goalRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	goals := make([]domain.ChallengeGoal, len(rows))
	for i, row := range rows {
		goals[i] = row.toDomain()
	}
	return goals, nil
}

func scanGoal(row pgx.Row) (*domain.ChallengeGoal, error) {
	var r goalRow
	err := row.Scan(
		&r.ID,
		&r.UserKey,
		&r.ChallengeType,
		&r.Target,
		&r.Current,
		&r.TimeLimitSeconds,
		&r.TimeRemainingSeconds,
		&r.Active,
		&r.Completed,
		&r.StartedAt,
		&r.CompletedAt,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	g := r.toDomain()
	return &g, nil
}
