// Package focus implements the FocusSession repository using PostgreSQL.
package focus

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

// oneOpenIndex is the partial unique index allowing one open session per user.
const oneOpenIndex = "focus_sessions_one_open_idx"

// Repo provides focus session persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new focus session repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const table = "focus_sessions"

var columns = []string{
	"id", "user_key", "challenge_type", "start_time", "end_time", "duration_seconds",
	"actions_completed", "xp_earned", "bonus_xp", "completed", "created_at",
}

const sessionColumns = `id, user_key, challenge_type, start_time, end_time, duration_seconds,
	actions_completed, xp_earned, bonus_xp, completed, created_at`

const createSQL = `
INSERT INTO focus_sessions (id, user_key, challenge_type, start_time, duration_seconds, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

const lockByIDSQL = `
SELECT ` + sessionColumns + `
FROM focus_sessions
WHERE id = $1 AND user_key = $2
FOR UPDATE`

const getOpenSQL = `
SELECT ` + sessionColumns + `
FROM focus_sessions
WHERE user_key = $1 AND end_time IS NULL`

const closeSQL = `
UPDATE focus_sessions
SET end_time = $3, actions_completed = $4, xp_earned = $5, bonus_xp = $6, completed = $7
WHERE id = $1 AND user_key = $2 AND end_time IS NULL`

const historySQL = `
SELECT count(*) > 0, COALESCE(max(actions_completed), 0)
FROM focus_sessions
WHERE user_key = $1 AND challenge_type = $2 AND end_time IS NOT NULL AND id <> $3`

type sessionRow struct {
	ID               uuid.UUID  `db:"id"`
	UserKey          string     `db:"user_key"`
	ChallengeType    *string    `db:"challenge_type"`
	StartTime        time.Time  `db:"start_time"`
	EndTime          *time.Time `db:"end_time"`
	DurationSeconds  int        `db:"duration_seconds"`
	ActionsCompleted int        `db:"actions_completed"`
	XPEarned         int        `db:"xp_earned"`
	BonusXP          int        `db:"bonus_xp"`
	Completed        bool       `db:"completed"`
	CreatedAt        time.Time  `db:"created_at"`
}

func (r sessionRow) toDomain() domain.FocusSession {
	var ct *domain.ChallengeType
	if r.ChallengeType != nil {
		v := domain.ChallengeType(*r.ChallengeType)
		ct = &v
	}
	return domain.FocusSession{
		ID:               r.ID,
		UserKey:          r.UserKey,
		ChallengeType:    ct,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		DurationSeconds:  r.DurationSeconds,
		ActionsCompleted: r.ActionsCompleted,
		XPEarned:         r.XPEarned,
		BonusXP:          r.BonusXP,
		Completed:        r.Completed,
		CreatedAt:        r.CreatedAt,
	}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts an open session. A second open session for the same user
// violates the partial unique index and yields domain.ErrConflict.
func (r *Repo) Create(ctx context.Context, s *domain.FocusSession) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var ct *string
	if s.ChallengeType != nil {
		v := string(*s.ChallengeType)
		ct = &v
	}

	_, err := q.Exec(ctx, createSQL, s.ID, s.UserKey, ct, s.StartTime.UTC(), s.DurationSeconds, s.CreatedAt.UTC())
	if err != nil {
		if postgres.IsUniqueViolation(err, oneOpenIndex) {
			return fmt.Errorf("focus_session %s: a session is already open: %w", s.ID, domain.ErrConflict)
		}
		return postgres.MapError(err, "focus_session", s.ID)
	}
	return nil
}

// Close persists the scored result of an open session. If the row is no
// longer open it returns domain.ErrInvalidState.
func (r *Repo) Close(ctx context.Context, s *domain.FocusSession) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, closeSQL,
		s.ID,
		s.UserKey,
		s.EndTime,
		s.ActionsCompleted,
		s.XPEarned,
		s.BonusXP,
		s.Completed,
	)
	if err != nil {
		return postgres.MapError(err, "focus_session", s.ID)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewInvalidStateError("focus_session "+s.ID.String(), "already closed")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByIDForUpdate locks and returns the user's session.
func (r *Repo) GetByIDForUpdate(ctx context.Context, userKey string, id uuid.UUID) (*domain.FocusSession, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	s, err := scanSession(q.QueryRow(ctx, lockByIDSQL, id, userKey))
	if err != nil {
		return nil, postgres.MapError(err, "focus_session", id)
	}
	return s, nil
}

// GetOpen returns domain.ErrNotFound when the user has no open session.
func (r *Repo) GetOpen(ctx context.Context, userKey string) (*domain.FocusSession, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	s, err := scanSession(q.QueryRow(ctx, getOpenSQL, userKey))
	if err != nil {
		return nil, postgres.MapError(err, "focus_session open for", userKey)
	}
	return s, nil
}

// History summarises the user's closed sessions of type ct, ignoring exclude.
func (r *Repo) History(ctx context.Context, userKey string, ct domain.ChallengeType, exclude uuid.UUID) (domain.SessionHistory, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var h domain.SessionHistory
	if err := q.QueryRow(ctx, historySQL, userKey, string(ct), exclude).Scan(&h.HasPrior, &h.BestActions); err != nil {
		return domain.SessionHistory{}, fmt.Errorf("session history: %w", err)
	}
	return h, nil
}

// ListByUser returns the user's sessions, newest first. limit <= 0 means all.
func (r *Repo) ListByUser(ctx context.Context, userKey string, limit int) ([]domain.FocusSession, error) {
	query := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_key": userKey}).
		OrderBy("start_time DESC", "id DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	return r.selectSessions(ctx, query)
}

// ListOverdue returns open sessions of any user whose deadline is <= now,
// oldest first.
func (r *Repo) ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.FocusSession, error) {
	query := postgres.Builder().
		Select(columns...).
		From(table).
		Where("end_time IS NULL").
		Where(squirrel.Expr("start_time + make_interval(secs => duration_seconds) <= ?", now.UTC())).
		OrderBy("start_time ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	return r.selectSessions(ctx, query)
}

func (r *Repo) selectSessions(ctx context.Context, query squirrel.SelectBuilder) ([]domain.FocusSession, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sessions query: %w", err)
	}

	var rows []sessionRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}

	sessions := make([]domain.FocusSession, len(rows))
	for i, row := range rows {
		sessions[i] = row.toDomain()
	}
	return sessions, nil
}

func scanSession(row pgx.Row) (*domain.FocusSession, error) {
	var r sessionRow
	err := row.Scan(
		&r.ID,
		&r.UserKey,
		&r.ChallengeType,
		&r.StartTime,
		&r.EndTime,
		&r.DurationSeconds,
		&r.ActionsCompleted,
		&r.XPEarned,
		&r.BonusXP,
		&r.Completed,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s := r.toDomain()
	return &s, nil
}
