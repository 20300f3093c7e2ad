// Package progress implements the UserProgress repository using PostgreSQL.
package progress

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/hustle-xp/internal/adapter/postgres"
	"github.com/heartmarshall/hustle-xp/internal/domain"
)

// Repo provides user progress persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new progress repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const progressColumns = `id, user_key, cumulative_xp, current_level, today_xp, last_reset_date, created_at`

const getByUserKeySQL = `
SELECT ` + progressColumns + `
FROM user_progress
WHERE user_key = $1`

const lockByUserKeySQL = getByUserKeySQL + `
FOR UPDATE`

const insertIfMissingSQL = `
INSERT INTO user_progress (id, user_key, cumulative_xp, current_level, today_xp, last_reset_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
ON CONFLICT (user_key) DO NOTHING`

const updateSQL = `
UPDATE user_progress
SET cumulative_xp = $2, current_level = $3, today_xp = $4, last_reset_date = $5, updated_at = now()
WHERE user_key = $1`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// GetByUserKey returns domain.ErrNotFound if the user has no progress row.
func (r *Repo) GetByUserKey(ctx context.Context, userKey string) (*domain.UserProgress, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	p, err := scanProgress(q.QueryRow(ctx, getByUserKeySQL, userKey))
	if err != nil {
		return nil, postgres.MapError(err, "user_progress", userKey)
	}
	return p, nil
}

// GetOrCreateForUpdate inserts seed if the user has no row yet, then locks
// and returns the stored row. Must run inside a transaction for the lock to
// outlive the call.
func (r *Repo) GetOrCreateForUpdate(ctx context.Context, seed domain.UserProgress) (*domain.UserProgress, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, insertIfMissingSQL,
		seed.ID,
		seed.UserKey,
		seed.CumulativeXP,
		seed.CurrentLevel,
		seed.TodayXP,
		seed.LastResetDate,
		seed.CreatedAt.UTC(),
	)
	if err != nil {
		return nil, postgres.MapError(err, "user_progress", seed.UserKey)
	}

	p, err := scanProgress(q.QueryRow(ctx, lockByUserKeySQL, seed.UserKey))
	if err != nil {
		return nil, postgres.MapError(err, "user_progress", seed.UserKey)
	}
	return p, nil
}

// Update writes the counters and reset date of p.
func (r *Repo) Update(ctx context.Context, p *domain.UserProgress) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, updateSQL, p.UserKey, p.CumulativeXP, p.CurrentLevel, p.TodayXP, p.LastResetDate)
	if err != nil {
		return postgres.MapError(err, "user_progress", p.UserKey)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user_progress %s: %w", p.UserKey, domain.ErrNotFound)
	}
	return nil
}

func scanProgress(row pgx.Row) (*domain.UserProgress, error) {
	var p domain.UserProgress
	err := row.Scan(
		&p.ID,
		&p.UserKey,
		&p.CumulativeXP,
		&p.CurrentLevel,
		&p.TodayXP,
		&p.LastResetDate,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
