package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/hustle-xp/internal/domain"
)

// UniqueUserKey returns a user key that will not collide with other tests
// sharing the container.
func UniqueUserKey(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}

// SeedProgress inserts a user_progress row and returns it.
func SeedProgress(t *testing.T, pool *pgxpool.Pool, userKey string, xp int, today string) domain.UserProgress {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	p := domain.NewUserProgress(userKey, today, now)
	p.Award(xp, today)

	_, err := pool.Exec(context.Background(),
		`INSERT INTO user_progress (id, user_key, cumulative_xp, current_level, today_xp, last_reset_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		p.ID, p.UserKey, p.CumulativeXP, p.CurrentLevel, p.TodayXP, p.LastResetDate, p.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedProgress: %v", err)
	}

	return p
}

// SeedClosedSession inserts a closed focus session.
func SeedClosedSession(t *testing.T, pool *pgxpool.Pool, userKey string, ct *domain.ChallengeType, actions int, completed bool) domain.FocusSession {
	t.Helper()

	start := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	end := start.Add(25 * time.Minute)
	s := domain.FocusSession{
		ID:               uuid.New(),
		UserKey:          userKey,
		ChallengeType:    ct,
		StartTime:        start,
		EndTime:          &end,
		DurationSeconds:  1500,
		ActionsCompleted: actions,
		XPEarned:         actions * domain.PerActionXP,
		Completed:        completed,
		CreatedAt:        start,
	}

	var ctRaw *string
	if ct != nil {
		v := string(*ct)
		ctRaw = &v
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO focus_sessions (id, user_key, challenge_type, start_time, end_time, duration_seconds,
		                             actions_completed, xp_earned, bonus_xp, completed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10)`,
		s.ID, s.UserKey, ctRaw, s.StartTime, s.EndTime, s.DurationSeconds,
		s.ActionsCompleted, s.XPEarned, s.Completed, s.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedClosedSession: %v", err)
	}

	return s
}
