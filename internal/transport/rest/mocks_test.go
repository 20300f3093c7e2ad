package rest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/internal/service/challenge"
	"github.com/heartmarshall/hustle-xp/internal/service/dashboard"
	"github.com/heartmarshall/hustle-xp/internal/service/focus"
	"github.com/heartmarshall/hustle-xp/internal/service/ledger"
	"github.com/heartmarshall/hustle-xp/internal/service/progress"
	"github.com/heartmarshall/hustle-xp/internal/service/todo"
)

// ---------------------------------------------------------------------------
// progressService / overviewService
// ---------------------------------------------------------------------------

type progressServiceMock struct {
	GetProgressFunc func(ctx context.Context) (*progress.View, error)
}

func (m *progressServiceMock) GetProgress(ctx context.Context) (*progress.View, error) {
	if m.GetProgressFunc == nil {
		panic("progressServiceMock.GetProgressFunc: method is nil but progressService.GetProgress was just called")
	}
	return m.GetProgressFunc(ctx)
}

type overviewServiceMock struct {
	OverviewFunc func(ctx context.Context) (*dashboard.Overview, error)
}

func (m *overviewServiceMock) Overview(ctx context.Context) (*dashboard.Overview, error) {
	if m.OverviewFunc == nil {
		panic("overviewServiceMock.OverviewFunc: method is nil but overviewService.Overview was just called")
	}
	return m.OverviewFunc(ctx)
}

// ---------------------------------------------------------------------------
// ledgerService
// ---------------------------------------------------------------------------

type ledgerServiceMock struct {
	RecordActionFunc func(ctx context.Context, input ledger.RecordActionInput) (*ledger.RecordResult, error)
	ActionsOnFunc    func(ctx context.Context, date string) ([]domain.ActionEvent, error)
	StatsSinceFunc   func(ctx context.Context, days int) (map[domain.ActionType]int, error)

	mu    sync.Mutex
	calls struct {
		StatsSince []int
	}
}

func (m *ledgerServiceMock) RecordAction(ctx context.Context, input ledger.RecordActionInput) (*ledger.RecordResult, error) {
	if m.RecordActionFunc == nil {
		panic("ledgerServiceMock.RecordActionFunc: method is nil but ledgerService.RecordAction was just called")
	}
	return m.RecordActionFunc(ctx, input)
}

func (m *ledgerServiceMock) ActionsOn(ctx context.Context, date string) ([]domain.ActionEvent, error) {
	if m.ActionsOnFunc == nil {
		panic("ledgerServiceMock.ActionsOnFunc: method is nil but ledgerService.ActionsOn was just called")
	}
	return m.ActionsOnFunc(ctx, date)
}

func (m *ledgerServiceMock) StatsSince(ctx context.Context, days int) (map[domain.ActionType]int, error) {
	if m.StatsSinceFunc == nil {
		panic("ledgerServiceMock.StatsSinceFunc: method is nil but ledgerService.StatsSince was just called")
	}
	m.mu.Lock()
	m.calls.StatsSince = append(m.calls.StatsSince, days)
	m.mu.Unlock()
	return m.StatsSinceFunc(ctx, days)
}

func (m *ledgerServiceMock) StatsSinceCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.StatsSince
}

// ---------------------------------------------------------------------------
// todoService
// ---------------------------------------------------------------------------

type todoServiceMock struct {
	CreateTodoFunc func(ctx context.Context, input todo.CreateTodoInput) (*domain.Todo, error)
	ListTodosFunc  func(ctx context.Context) ([]domain.Todo, error)
	UpdateTodoFunc func(ctx context.Context, id uuid.UUID, input todo.UpdateTodoInput) (*todo.UpdateResult, error)
	DeleteTodoFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *todoServiceMock) CreateTodo(ctx context.Context, input todo.CreateTodoInput) (*domain.Todo, error) {
	if m.CreateTodoFunc == nil {
		panic("todoServiceMock.CreateTodoFunc: method is nil but todoService.CreateTodo was just called")
	}
	return m.CreateTodoFunc(ctx, input)
}

func (m *todoServiceMock) ListTodos(ctx context.Context) ([]domain.Todo, error) {
	if m.ListTodosFunc == nil {
		panic("todoServiceMock.ListTodosFunc: method is nil but todoService.ListTodos was just called")
	}
	return m.ListTodosFunc(ctx)
}

func (m *todoServiceMock) UpdateTodo(ctx context.Context, id uuid.UUID, input todo.UpdateTodoInput) (*todo.UpdateResult, error) {
	if m.UpdateTodoFunc == nil {
		panic("todoServiceMock.UpdateTodoFunc: method is nil but todoService.UpdateTodo was just called")
	}
	return m.UpdateTodoFunc(ctx, id, input)
}

func (m *todoServiceMock) DeleteTodo(ctx context.Context, id uuid.UUID) error {
	if m.DeleteTodoFunc == nil {
		panic("todoServiceMock.DeleteTodoFunc: method is nil but todoService.DeleteTodo was just called")
	}
	return m.DeleteTodoFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// challengeService
// ---------------------------------------------------------------------------

type challengeServiceMock struct {
	CreateGoalFunc        func(ctx context.Context, input challenge.CreateGoalInput) (*domain.ChallengeGoal, error)
	StartGoalFunc         func(ctx context.Context, id uuid.UUID) (*domain.ChallengeGoal, error)
	StopGoalFunc          func(ctx context.Context, id uuid.UUID) (*domain.ChallengeGoal, error)
	IncrementProgressFunc func(ctx context.Context, id uuid.UUID, delta int) (*domain.ChallengeGoal, error)
	UpdateGoalFunc        func(ctx context.Context, id uuid.UUID, input challenge.UpdateGoalInput) (*domain.ChallengeGoal, error)
	ActiveGoalFunc        func(ctx context.Context) (*domain.ChallengeGoal, error)
	GetGoalFunc           func(ctx context.Context, id uuid.UUID) (*domain.ChallengeGoal, error)
	ListFunc              func(ctx context.Context, limit int) ([]domain.ChallengeGoal, error)
}

func (m *challengeServiceMock) CreateGoal(ctx context.Context, input challenge.CreateGoalInput) (*domain.ChallengeGoal, error) {
	if m.CreateGoalFunc == nil {
		panic("challengeServiceMock.CreateGoalFunc: method is nil but challengeService.CreateGoal was just called")
	}
	return m.CreateGoalFunc(ctx, input)
}

func (m *challengeServiceMock) StartGoal(ctx context.Context, id uuid.UUID) (*domain.ChallengeGoal, error) {
	if m.StartGoalFunc == nil {
		panic("challengeServiceMock.StartGoalFunc: method is nil but challengeService.StartGoal was just called")
	}
	return m.StartGoalFunc(ctx, id)
}

func (m *challengeServiceMock) StopGoal(ctx context.Context, id uuid.UUID) (*domain.ChallengeGoal, error) {
	if m.StopGoalFunc == nil {
		panic("challengeServiceMock.StopGoalFunc: method is nil but challengeService.StopGoal was just called")
	}
	return m.StopGoalFunc(ctx, id)
}

func (m *challengeServiceMock) IncrementProgress(ctx context.Context, id uuid.UUID, delta int) (*domain.ChallengeGoal, error) {
	if m.IncrementProgressFunc == nil {
		panic("challengeServiceMock.IncrementProgressFunc: method is nil but challengeService.IncrementProgress was just called")
	}
	return m.IncrementProgressFunc(ctx, id, delta)
}

func (m *challengeServiceMock) UpdateGoal(ctx context.Context, id uuid.UUID, input challenge.UpdateGoalInput) (*domain.ChallengeGoal, error) {
	if m.UpdateGoalFunc == nil {
		panic("challengeServiceMock.UpdateGoalFunc: method is nil but challengeService.UpdateGoal was just called")
	}
	return m.UpdateGoalFunc(ctx, id, input)
}

func (m *challengeServiceMock) ActiveGoal(ctx context.Context) (*domain.ChallengeGoal, error) {
	if m.ActiveGoalFunc == nil {
		panic("challengeServiceMock.ActiveGoalFunc: method is nil but challengeService.ActiveGoal was just called")
	}
	return m.ActiveGoalFunc(ctx)
}

func (m *challengeServiceMock) GetGoal(ctx context.Context, id uuid.UUID) (*domain.ChallengeGoal, error) {
	if m.GetGoalFunc == nil {
		panic("challengeServiceMock.GetGoalFunc: method is nil but challengeService.GetGoal was just called")
	}
	return m.GetGoalFunc(ctx, id)
}

func (m *challengeServiceMock) List(ctx context.Context, limit int) ([]domain.ChallengeGoal, error) {
	if m.ListFunc == nil {
		panic("challengeServiceMock.ListFunc: method is nil but challengeService.List was just called")
	}
	return m.ListFunc(ctx, limit)
}

// ---------------------------------------------------------------------------
// focusService / achievementService
// ---------------------------------------------------------------------------

type focusServiceMock struct {
	StartSessionFunc func(ctx context.Context, input focus.StartSessionInput) (*domain.FocusSession, error)
	EndSessionFunc   func(ctx context.Context, input focus.EndSessionInput) (*focus.EndResult, error)
	OpenSessionFunc  func(ctx context.Context) (*domain.FocusSession, error)
	RecordsFunc      func(ctx context.Context, limit int) ([]domain.FocusSession, error)
}

func (m *focusServiceMock) StartSession(ctx context.Context, input focus.StartSessionInput) (*domain.FocusSession, error) {
	if m.StartSessionFunc == nil {
		panic("focusServiceMock.StartSessionFunc: method is nil but focusService.StartSession was just called")
	}
	return m.StartSessionFunc(ctx, input)
}

func (m *focusServiceMock) EndSession(ctx context.Context, input focus.EndSessionInput) (*focus.EndResult, error) {
	if m.EndSessionFunc == nil {
		panic("focusServiceMock.EndSessionFunc: method is nil but focusService.EndSession was just called")
	}
	return m.EndSessionFunc(ctx, input)
}

func (m *focusServiceMock) OpenSession(ctx context.Context) (*domain.FocusSession, error) {
	if m.OpenSessionFunc == nil {
		panic("focusServiceMock.OpenSessionFunc: method is nil but focusService.OpenSession was just called")
	}
	return m.OpenSessionFunc(ctx)
}

func (m *focusServiceMock) Records(ctx context.Context, limit int) ([]domain.FocusSession, error) {
	if m.RecordsFunc == nil {
		panic("focusServiceMock.RecordsFunc: method is nil but focusService.Records was just called")
	}
	return m.RecordsFunc(ctx, limit)
}

type achievementServiceMock struct {
	ListFunc func(ctx context.Context) ([]domain.Achievement, error)
}

func (m *achievementServiceMock) List(ctx context.Context) ([]domain.Achievement, error) {
	if m.ListFunc == nil {
		panic("achievementServiceMock.ListFunc: method is nil but achievementService.List was just called")
	}
	return m.ListFunc(ctx)
}
