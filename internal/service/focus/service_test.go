package focus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/hustle-xp/internal/adapter/memory"
	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/internal/metrics"
	"github.com/heartmarshall/hustle-xp/internal/service/achievement"
	"github.com/heartmarshall/hustle-xp/internal/service/challenge"
	"github.com/heartmarshall/hustle-xp/internal/service/ledger"
	"github.com/heartmarshall/hustle-xp/internal/service/progress"
	"github.com/heartmarshall/hustle-xp/pkg/clock"
	"github.com/heartmarshall/hustle-xp/pkg/ctxutil"
)

// evaluatorMock is a moq-style mock of achievementEvaluator.
type evaluatorMock struct {
	EvaluateFunc func(ctx context.Context, userKey string) ([]domain.Achievement, error)

	mu    sync.Mutex
	calls []string
}

func (m *evaluatorMock) Evaluate(ctx context.Context, userKey string) ([]domain.Achievement, error) {
	m.mu.Lock()
	m.calls = append(m.calls, userKey)
	m.mu.Unlock()
	if m.EvaluateFunc == nil {
		panic("evaluatorMock.EvaluateFunc: method is nil but achievementEvaluator.Evaluate was just called")
	}
	return m.EvaluateFunc(ctx, userKey)
}

func (m *evaluatorMock) EvaluateCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fixture struct {
	svc      *Service
	ledger   *ledger.Service
	progress *progress.Service
	store    *memory.Store
	tx       *memory.TxManager
	clock    *clock.Fixed
	ctx      context.Context
}

func newFixture(t *testing.T, eval achievementEvaluator) *fixture {
	t.Helper()

	store := memory.NewStore()
	tx := memory.NewTxManager(store)
	clk := clock.NewFixed(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
	m := metrics.New(prometheus.NewRegistry())
	log := slog.Default()

	progressSvc := progress.NewService(log, store.Progress(), tx, clk, m, time.UTC)
	goalSvc := challenge.NewService(log, store.Goals(), tx, clk, m)
	ledgerSvc := ledger.NewService(log, store.Actions(), progressSvc, goalSvc, tx, clk, m, time.UTC)
	if eval == nil {
		eval = achievement.NewService(log, store.Achievements(), store.Sessions(), clk, m)
	}

	cfg := Config{MaxDuration: 4 * time.Hour, DefaultRecordsLimit: 50}
	return &fixture{
		svc:      NewService(log, store.Sessions(), store.Actions(), progressSvc, eval, tx, clk, m, cfg),
		ledger:   ledgerSvc,
		progress: progressSvc,
		store:    store,
		tx:       tx,
		clock:    clk,
		ctx:      ctxutil.WithUserKey(context.Background(), "alice"),
	}
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) run(t *testing.T, ct *string, actions int, completed bool) *EndResult {
	t.Helper()

	fs, err := f.svc.StartSession(f.ctx, StartSessionInput{ChallengeType: ct, DurationSeconds: 1500})
	require.NoError(t, err)
	f.clock.Advance(25 * time.Minute)

	res, err := f.svc.EndSession(f.ctx, EndSessionInput{SessionID: fs.ID, ActionsCompleted: actions, Completed: completed})
	require.NoError(t, err)
	return res
}

func TestService_EndToEnd_ActionsThenFirstSprint(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	for range 3 {
		_, err := f.ledger.RecordAction(f.ctx, ledger.RecordActionInput{Type: "dm"})
		require.NoError(t, err)
	}

	view, err := f.progress.GetProgress(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, view.Progress.CumulativeXP)
	assert.Equal(t, 1, view.Progress.CurrentLevel)

	res := f.run(t, ptr("dm_sprint"), 20, true)

	assert.Equal(t, 100, res.Session.XPEarned)
	assert.Equal(t, 30, res.Session.BonusXP)
	assert.Equal(t, domain.BonusFirstCompletion, res.Score.Kind)
	require.NotNil(t, res.Progress)
	assert.Equal(t, 145, res.Progress.CumulativeXP)
	assert.Equal(t, 2, res.Progress.CurrentLevel)
	assert.False(t, res.Session.IsOpen())
}

func TestService_EndSession_BonusTiers(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	sprint := ptr("call_sprint")

	first := f.run(t, sprint, 10, true)
	assert.Equal(t, domain.BonusFirstCompletion, first.Score.Kind)

	record := f.run(t, sprint, 15, false)
	assert.Equal(t, domain.BonusNewRecord, record.Score.Kind, "a new record pays even when stopped early")
	assert.Equal(t, 100, record.Session.BonusXP)

	tie := f.run(t, sprint, 15, true)
	assert.Equal(t, domain.BonusNearRecord, tie.Score.Kind)
	assert.Equal(t, 25, tie.Session.BonusXP)

	near := f.run(t, sprint, 12, true)
	assert.Equal(t, domain.BonusNearRecord, near.Score.Kind)

	low := f.run(t, sprint, 11, true)
	assert.Equal(t, domain.BonusNone, low.Score.Kind)
	assert.Equal(t, 55, low.Session.XPEarned)

	other := f.run(t, ptr("loom_marathon"), 3, true)
	assert.Equal(t, domain.BonusFirstCompletion, other.Score.Kind, "history is per challenge type")

	freeform := f.run(t, nil, 30, true)
	assert.Equal(t, domain.BonusNone, freeform.Score.Kind)
	assert.Equal(t, 150, freeform.Session.XPEarned)
}

func TestService_EndSession_ZeroActionsAwardsNothing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	res := f.run(t, ptr("dm_sprint"), 0, true)

	assert.Equal(t, 0, res.Score.Total())
	assert.Nil(t, res.Progress)
}

func TestService_EndSession_AlreadyClosed(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	fs, err := f.svc.StartSession(f.ctx, StartSessionInput{ChallengeType: ptr("dm_sprint"), DurationSeconds: 600})
	require.NoError(t, err)

	input := EndSessionInput{SessionID: fs.ID, ActionsCompleted: 4, Completed: true}
	_, err = f.svc.EndSession(f.ctx, input)
	require.NoError(t, err)

	_, err = f.svc.EndSession(f.ctx, input)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	view, err := f.progress.GetProgress(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, view.Progress.CumulativeXP, "the second end must not re-score")
}

func TestService_EndSession_UnknownSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	fs, err := f.svc.StartSession(f.ctx, StartSessionInput{DurationSeconds: 600})
	require.NoError(t, err)

	bob := ctxutil.WithUserKey(context.Background(), "bob")
	_, err = f.svc.EndSession(bob, EndSessionInput{SessionID: fs.ID, ActionsCompleted: 1})
	require.ErrorIs(t, err, domain.ErrNotFound, "sessions are scoped to their user")
}

func TestService_StartSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	_, err := f.svc.StartSession(f.ctx, StartSessionInput{DurationSeconds: 0})
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.StartSession(f.ctx, StartSessionInput{DurationSeconds: 5 * 3600})
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.StartSession(f.ctx, StartSessionInput{ChallengeType: ptr("nap_sprint"), DurationSeconds: 60})
	require.ErrorIs(t, err, domain.ErrValidation)

	fs, err := f.svc.StartSession(f.ctx, StartSessionInput{DurationSeconds: 60})
	require.NoError(t, err)
	assert.True(t, fs.IsOpen())
	assert.Nil(t, fs.ChallengeType)

	_, err = f.svc.StartSession(f.ctx, StartSessionInput{DurationSeconds: 60})
	require.ErrorIs(t, err, domain.ErrConflict)

	open, err := f.svc.OpenSession(f.ctx)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, fs.ID, open.ID)
}

func TestService_EndSession_AchievementFailureIsLogged(t *testing.T) {
	t.Parallel()

	eval := &evaluatorMock{
		EvaluateFunc: func(context.Context, string) ([]domain.Achievement, error) {
			return nil, errors.New("achievements unavailable")
		},
	}
	f := newFixture(t, eval)

	res := f.run(t, nil, 2, true)
	assert.Empty(t, res.Unlocked)
	assert.Equal(t, []string{"alice"}, eval.EvaluateCalls())
}

func TestService_EndSession_UnlocksFirstSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	res := f.run(t, ptr("loom_marathon"), 5, true)

	var got []domain.AchievementType
	for _, a := range res.Unlocked {
		got = append(got, a.Type)
	}
	assert.Contains(t, got, domain.AchievementFirstSession)
}

func TestService_Records(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.run(t, nil, 1, true)
	last := f.run(t, nil, 2, false)

	records, err := f.svc.Records(f.ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, last.Session.ID, records[0].ID)

	limited, err := f.svc.Records(f.ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestService_ExpireOverdue(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	start := f.clock.Now()

	fs, err := f.svc.StartSession(f.ctx, StartSessionInput{ChallengeType: ptr("dm_sprint"), DurationSeconds: 600})
	require.NoError(t, err)

	for _, typ := range []string{"dm", "dm", "loom", "dm"} {
		f.clock.Advance(time.Minute)
		_, err := f.ledger.RecordAction(f.ctx, ledger.RecordActionInput{Type: typ})
		require.NoError(t, err)
	}

	n, err := f.svc.ExpireOverdue(context.Background(), start.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, n, "session still running")

	f.clock.Advance(time.Hour)
	_, err = f.ledger.RecordAction(f.ctx, ledger.RecordActionInput{Type: "dm"})
	require.NoError(t, err)

	n, err = f.svc.ExpireOverdue(context.Background(), f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := f.svc.Records(f.ctx, 1)
	require.NoError(t, err)
	got := records[0]
	assert.Equal(t, fs.ID, got.ID)
	assert.False(t, got.IsOpen())
	assert.True(t, got.Completed)
	assert.Equal(t, 3, got.ActionsCompleted, "only dm events inside the session window count")
	assert.Equal(t, fs.Deadline(), *got.EndTime)
	assert.Equal(t, 15, got.XPEarned)
	assert.Equal(t, 30, got.BonusXP)

	n, err = f.svc.ExpireOverdue(context.Background(), f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n, "closed sessions are not expired twice")
}

func TestService_ExpireOverdue_FreeformCountsAllActions(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	_, err := f.svc.StartSession(f.ctx, StartSessionInput{DurationSeconds: 300})
	require.NoError(t, err)

	for _, typ := range []string{"dm", "call", "system"} {
		f.clock.Advance(time.Minute)
		_, err := f.ledger.RecordAction(f.ctx, ledger.RecordActionInput{Type: typ})
		require.NoError(t, err)
	}
	f.clock.Advance(10 * time.Minute)

	n, err := f.svc.ExpireOverdue(context.Background(), f.clock.Now())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	records, err := f.svc.Records(f.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, records[0].ActionsCompleted)
	assert.Equal(t, 0, records[0].BonusXP)
}

// closeFailingRepo fails Close for every session owned by failUser.
type closeFailingRepo struct {
	*memory.SessionRepo
	failUser string
}

func (r closeFailingRepo) Close(ctx context.Context, fs *domain.FocusSession) error {
	if fs.UserKey == r.failUser {
		return errors.New("row is corrupt")
	}
	return r.SessionRepo.Close(ctx, fs)
}

func TestService_ExpireOverdue_FailureDoesNotBlockBatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &evaluatorMock{
		EvaluateFunc: func(context.Context, string) ([]domain.Achievement, error) { return nil, nil },
	})
	svc := NewService(slog.Default(), closeFailingRepo{SessionRepo: f.store.Sessions(), failUser: "bob"},
		f.store.Actions(), f.progress, f.svc.achievements, f.tx, f.clock, f.svc.metrics, f.svc.cfg)

	bob := ctxutil.WithUserKey(context.Background(), "bob")
	stuck, err := svc.StartSession(bob, StartSessionInput{DurationSeconds: 300})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = svc.StartSession(f.ctx, StartSessionInput{DurationSeconds: 300})
	require.NoError(t, err)
	f.clock.Advance(time.Hour)

	n, err := svc.ExpireOverdue(context.Background(), f.clock.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), stuck.ID.String())
	assert.Equal(t, 1, n, "later sessions still close")

	_, err = f.store.Sessions().GetOpen(f.ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	open, err := f.store.Sessions().GetOpen(f.ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, stuck.ID, open.ID)
}

func TestService_ConcurrentEndSessionScoresOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	fs, err := f.svc.StartSession(f.ctx, StartSessionInput{ChallengeType: ptr("dm_sprint"), DurationSeconds: 600})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.EndSession(f.ctx, EndSessionInput{SessionID: fs.ID, ActionsCompleted: 10, Completed: true})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrInvalidState) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	view, err := f.progress.GetProgress(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 80, view.Progress.CumulativeXP)
}
