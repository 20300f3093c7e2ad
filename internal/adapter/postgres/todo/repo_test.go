package todo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v2"

	"github.com/heartmarshall/hustle-xp/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/hustle-xp/internal/domain"
)

func TestRepo_GetByIDForUpdate(t *testing.T) {
	t.Parallel()

	mock := testhelper.NewMockPool(t)
	id := uuid.New()
	now := time.Now()
	cols := []string{"id", "user_key", "title", "xp_value", "completed", "completed_at", "rewarded_at", "created_at"}
	mock.ExpectQuery(`SELECT .* FROM todos .* FOR UPDATE`).
		WithArgs(id, "u1").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(id, "u1", "Send invoices", 25, true, &now, &now, now))

	got, err := New(mock).GetByIDForUpdate(context.Background(), "u1", id)
	if err != nil {
		t.Fatalf("GetByIDForUpdate: %v", err)
	}
	if got.Title != "Send invoices" || got.XPValue != 25 || got.RewardedAt == nil {
		t.Errorf("got %+v", got)
	}
	testhelper.ExpectationsWereMet(t, mock)
}

func TestRepo_Delete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"deleted", 1, nil},
		{"missing", 0, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := testhelper.NewMockPool(t)
			id := uuid.New()
			mock.ExpectExec(`DELETE FROM todos`).
				WithArgs(id, "u1").
				WillReturnResult(pgxmock.NewResult("DELETE", tt.affected))

			err := New(mock).Delete(context.Background(), "u1", id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			testhelper.ExpectationsWereMet(t, mock)
		})
	}
}

func TestRepo_List_Empty(t *testing.T) {
	t.Parallel()

	mock := testhelper.NewMockPool(t)
	mock.ExpectQuery(`SELECT .* FROM todos WHERE user_key = \$1 ORDER BY created_at DESC`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_key", "title", "xp_value", "completed", "completed_at", "rewarded_at", "created_at"}))

	got, err := New(mock).List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d todos, want 0", len(got))
	}
	testhelper.ExpectationsWereMet(t, mock)
}
