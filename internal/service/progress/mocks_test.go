package progress

import (
	"context"
	"sync"

	"github.com/heartmarshall/hustle-xp/internal/domain"
)

// progressRepoMock is a moq-style mock of progressRepo.
type progressRepoMock struct {
	GetOrCreateForUpdateFunc func(ctx context.Context, seed domain.UserProgress) (*domain.UserProgress, error)
	UpdateFunc               func(ctx context.Context, p *domain.UserProgress) error

	mu    sync.Mutex
	calls struct {
		GetOrCreateForUpdate []domain.UserProgress
		Update               []domain.UserProgress
	}
}

func (m *progressRepoMock) GetOrCreateForUpdate(ctx context.Context, seed domain.UserProgress) (*domain.UserProgress, error) {
	m.mu.Lock()
	m.calls.GetOrCreateForUpdate = append(m.calls.GetOrCreateForUpdate, seed)
	m.mu.Unlock()
	if m.GetOrCreateForUpdateFunc == nil {
		panic("progressRepoMock.GetOrCreateForUpdateFunc: method is nil but progressRepo.GetOrCreateForUpdate was just called")
	}
	return m.GetOrCreateForUpdateFunc(ctx, seed)
}

func (m *progressRepoMock) Update(ctx context.Context, p *domain.UserProgress) error {
	m.mu.Lock()
	m.calls.Update = append(m.calls.Update, *p)
	m.mu.Unlock()
	if m.UpdateFunc == nil {
		panic("progressRepoMock.UpdateFunc: method is nil but progressRepo.Update was just called")
	}
	return m.UpdateFunc(ctx, p)
}

func (m *progressRepoMock) UpdateCalls() []domain.UserProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Update
}

// passthroughTx runs fn directly.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
