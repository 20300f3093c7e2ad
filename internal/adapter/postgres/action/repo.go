// Package action implements the append-only action ledger using PostgreSQL.
// Range and aggregate reads are built with squirrel and scanned with pgxscan.
package action

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

// Repo provides ledger persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new action repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const table = "action_events"

var columns = []string{"id", "user_key", "action_type", "xp_value", "occurred_at", "action_date"}

const appendSQL = `
INSERT INTO action_events (id, user_key, action_type, xp_value, occurred_at, action_date)
VALUES ($1, $2, $3, $4, $5, $6)`

type actionRow struct {
	ID         uuid.UUID `db:"id"`
	UserKey    string    `db:"user_key"`
	ActionType string    `db:"action_type"`
	XPValue    int       `db:"xp_value"`
	OccurredAt time.Time `db:"occurred_at"`
	ActionDate string    `db:"action_date"`
}

func (r actionRow) toDomain() domain.ActionEvent {
	return domain.ActionEvent{
		ID:        r.ID,
		UserKey:   r.UserKey,
		Type:      domain.ActionType(r.ActionType),
		XPValue:   r.XPValue,
		Timestamp: r.OccurredAt,
		Date:      r.ActionDate,
	}
}

type countRow struct {
	ActionType string `db:"action_type"`
	N          int    `db:"n"`
}

// Append inserts an immutable ledger entry.
func (r *Repo) Append(ctx context.Context, e *domain.ActionEvent) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, appendSQL,
		e.ID,
		e.UserKey,
		string(e.Type),
		e.XPValue,
		e.Timestamp.UTC(),
		e.Date,
	)
	if err != nil {
		return postgres.MapError(err, "action_event", e.ID)
	}
	return nil
}

// ListByDate returns the user's events on date, newest first.
func (r *Repo) ListByDate(ctx context.Context, userKey, date string) ([]domain.ActionEvent, error) {
	query := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_key": userKey, "action_date": date}).
		OrderBy("occurred_at DESC", "id DESC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list actions query: %w", err)
	}

	var rows []actionRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list actions by date: %w", err)
	}

	events := make([]domain.ActionEvent, len(rows))
	for i, row := range rows {
		events[i] = row.toDomain()
	}
	return events, nil
}

// CountByType counts the user's events per type with from <= occurred_at <= to.
func (r *Repo) CountByType(ctx context.Context, userKey string, from, to time.Time) (map[domain.ActionType]int, error) {
	query := postgres.Builder().
		Select("action_type", "count(*) AS n").
		From(table).
		Where(squirrel.Eq{"user_key": userKey}).
		Where(squirrel.GtOrEq{"occurred_at": from.UTC()}).
		Where(squirrel.LtOrEq{"occurred_at": to.UTC()}).
		GroupBy("action_type")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count actions query: %w", err)
	}

	var rows []countRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("count actions by type: %w", err)
	}

	counts := make(map[domain.ActionType]int, len(rows))
	for _, row := range rows {
		counts[domain.ActionType(row.ActionType)] = row.N
	}
	return counts, nil
}

// CountBetween counts the user's events in [from, to], restricted to
// actionType when it is non-nil.
func (r *Repo) CountBetween(ctx context.Context, userKey string, actionType *domain.ActionType, from, to time.Time) (int, error) {
	where := squirrel.And{
		squirrel.Eq{"user_key": userKey},
		squirrel.GtOrEq{"occurred_at": from.UTC()},
		squirrel.LtOrEq{"occurred_at": to.UTC()},
	}
	if actionType != nil {
		where = append(where, squirrel.Eq{"action_type": string(*actionType)})
	}

	sql, args, err := postgres.Builder().Select("count(*)").From(table).Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count between query: %w", err)
	}

	var n int
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count actions between: %w", err)
	}
	return n, nil
}
