// Package achievement implements the Achievement repository using PostgreSQL.
package achievement

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/hustle-xp/internal/adapter/postgres"
	"github.com/heartmarshall/hustle-xp/internal/domain"
)

// Repo provides achievement persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new achievement repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const insertSQL = `
INSERT INTO achievements (id, user_key, achievement_type, title, description, unlocked_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT ON CONSTRAINT achievements_user_type_key DO NOTHING`

type achievementRow struct {
	ID          uuid.UUID `db:"id"`
	UserKey     string    `db:"user_key"`
	Type        string    `db:"achievement_type"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	UnlockedAt  time.Time `db:"unlocked_at"`
}

// Insert stores a. It reports false when the user already had the achievement.
func (r *Repo) Insert(ctx context.Context, a *domain.Achievement) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, insertSQL, a.ID, a.UserKey, string(a.Type), a.Title, a.Description, a.UnlockedAt.UTC())
	if err != nil {
		return false, postgres.MapError(err, "achievement", a.Type)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByUser returns the user's achievements, newest first.
func (r *Repo) ListByUser(ctx context.Context, userKey string) ([]domain.Achievement, error) {
	sql, args, err := postgres.Builder().
		Select("id", "user_key", "achievement_type", "title", "description", "unlocked_at").
		From("achievements").
		Where(squirrel.Eq{"user_key": userKey}).
		OrderBy("unlocked_at DESC", "achievement_type ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list achievements query: %w", err)
	}

	var rows []achievementRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}

	out := make([]domain.Achievement, len(rows))
	for i, row := range rows {
		out[i] = domain.Achievement{
			ID:          row.ID,
			UserKey:     row.UserKey,
			Type:        domain.AchievementType(row.Type),
			Title:       row.Title,
			Description: row.Description,
			UnlockedAt:  row.UnlockedAt,
		}
	}
	return out, nil
}
