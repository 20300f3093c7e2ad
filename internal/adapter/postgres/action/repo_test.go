package action

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v2"

	"github.com/heartmarshall/hustle-xp/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/hustle-xp/internal/domain"
)

func TestRepo_Append(t *testing.T) {
	t.Parallel()

	mock := testhelper.NewMockPool(t)
	e := &domain.ActionEvent{
		ID:        uuid.New(),
		UserKey:   "u1",
		Type:      domain.ActionTypeCall,
		XPValue:   30,
		Timestamp: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
		Date:      "2026-10-17",
	}

	mock.ExpectExec(`INSERT INTO action_events`).
		WithArgs(e.ID, "u1", "call", 30, e.Timestamp, "2026-10-17").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := New(mock).Append(context.Background(), e); err != nil {
		t.Fatalf("Append: %v", err)
	}
	testhelper.ExpectationsWereMet(t, mock)
}

func TestRepo_ListByDate(t *testing.T) {
	t.Parallel()

	mock := testhelper.NewMockPool(t)
	now := time.Now()
	rows := pgxmock.NewRows(columns).
		AddRow(uuid.New(), "u1", "dm", 5, now, "2026-10-17").
		AddRow(uuid.New(), "u1", "loom", 20, now.Add(-time.Minute), "2026-10-17")

	// squirrel sorts Eq keys: action_date before user_key.
	mock.ExpectQuery(`SELECT .* FROM action_events WHERE action_date = \$1 AND user_key = \$2 ORDER BY occurred_at DESC`).
		WithArgs("2026-10-17", "u1").
		WillReturnRows(rows)

	got, err := New(mock).ListByDate(context.Background(), "u1", "2026-10-17")
	if err != nil {
		t.Fatalf("ListByDate: %v", err)
	}
	if len(got) != 2 || got[0].Type != domain.ActionTypeDM || got[1].XPValue != 20 {
		t.Errorf("got %+v", got)
	}
	testhelper.ExpectationsWereMet(t, mock)
}

func TestRepo_CountByType(t *testing.T) {
	t.Parallel()

	mock := testhelper.NewMockPool(t)
	to := time.Now()
	from := to.AddDate(0, 0, -7)

	mock.ExpectQuery(`SELECT action_type, count\(\*\) AS n FROM action_events .* GROUP BY action_type`).
		WithArgs("u1", from.UTC(), to.UTC()).
		WillReturnRows(pgxmock.NewRows([]string{"action_type", "n"}).AddRow("dm", 3).AddRow("call", 1))

	got, err := New(mock).CountByType(context.Background(), "u1", from, to)
	if err != nil {
		t.Fatalf("CountByType: %v", err)
	}
	if got[domain.ActionTypeDM] != 3 || got[domain.ActionTypeCall] != 1 || len(got) != 2 {
		t.Errorf("got %v", got)
	}
	testhelper.ExpectationsWereMet(t, mock)
}

func TestRepo_CountBetween(t *testing.T) {
	t.Parallel()

	to := time.Now()
	from := to.Add(-25 * time.Minute)
	dm := domain.ActionTypeDM

	tests := []struct {
		name       string
		actionType *domain.ActionType
		args       []any
	}{
		{"all types", nil, []any{"u1", from.UTC(), to.UTC()}},
		{"single type", &dm, []any{"u1", from.UTC(), to.UTC(), "dm"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := testhelper.NewMockPool(t)
			mock.ExpectQuery(`SELECT count\(\*\) FROM action_events`).
				WithArgs(tt.args...).
				WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

			got, err := New(mock).CountBetween(context.Background(), "u1", tt.actionType, from, to)
			if err != nil {
				t.Fatalf("CountBetween: %v", err)
			}
			if got != 4 {
				t.Errorf("got %d, want 4", got)
			}
			testhelper.ExpectationsWereMet(t, mock)
		})
	}
}
