package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/hustle-xp/internal/adapter/memory"
	"github.com/heartmarshall/hustle-xp/internal/adapter/postgres"
	"github.com/heartmarshall/hustle-xp/internal/adapter/postgres/achievement"
	"github.com/heartmarshall/hustle-xp/internal/adapter/postgres/action"
	"github.com/heartmarshall/hustle-xp/internal/adapter/postgres/challenge"
	"github.com/heartmarshall/hustle-xp/internal/adapter/postgres/focus"
	"github.com/heartmarshall/hustle-xp/internal/adapter/postgres/progress"
	"github.com/heartmarshall/hustle-xp/internal/adapter/postgres/todo"
	"github.com/heartmarshall/hustle-xp/internal/config"
	"github.com/heartmarshall/hustle-xp/internal/domain"
)

// The repository sets below are the union of what the services consume.
// Both storage drivers satisfy all of them.

type progressStore interface {
	GetOrCreateForUpdate(ctx context.Context, seed domain.UserProgress) (*domain.UserProgress, error)
	Update(ctx context.Context, p *domain.UserProgress) error
}

type actionStore interface {
	Append(ctx context.Context, e *domain.ActionEvent) error
	ListByDate(ctx context.Context, userKey, date string) ([]domain.ActionEvent, error)
	CountByType(ctx context.Context, userKey string, from, to time.Time) (map[domain.ActionType]int, error)
	CountBetween(ctx context.Context, userKey string, actionType *domain.ActionType, from, to time.Time) (int, error)
}

type goalStore interface {
	Create(ctx context.Context, g *domain.ChallengeGoal) error
	GetByID(ctx context.Context, userKey string, id uuid.UUID) (*domain.ChallengeGoal, error)
	GetByIDForUpdate(ctx context.Context, userKey string, id uuid.UUID) (*domain.ChallengeGoal, error)
	GetActive(ctx context.Context, userKey string) (*domain.ChallengeGoal, error)
	GetActiveForUpdate(ctx context.Context, userKey string) (*domain.ChallengeGoal, error)
	List(ctx context.Context, userKey string, limit int) ([]domain.ChallengeGoal, error)
	Update(ctx context.Context, g *domain.ChallengeGoal) error
}

type sessionStore interface {
	Create(ctx context.Context, s *domain.FocusSession) error
	GetByIDForUpdate(ctx context.Context, userKey string, id uuid.UUID) (*domain.FocusSession, error)
	GetOpen(ctx context.Context, userKey string) (*domain.FocusSession, error)
	Close(ctx context.Context, s *domain.FocusSession) error
	History(ctx context.Context, userKey string, ct domain.ChallengeType, exclude uuid.UUID) (domain.SessionHistory, error)
	ListByUser(ctx context.Context, userKey string, limit int) ([]domain.FocusSession, error)
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.FocusSession, error)
}

type todoStore interface {
	Create(ctx context.Context, t *domain.Todo) error
	GetByIDForUpdate(ctx context.Context, userKey string, id uuid.UUID) (*domain.Todo, error)
	Update(ctx context.Context, t *domain.Todo) error
	Delete(ctx context.Context, userKey string, id uuid.UUID) error
	List(ctx context.Context, userKey string) ([]domain.Todo, error)
}

type achievementStore interface {
	Insert(ctx context.Context, a *domain.Achievement) (bool, error)
	ListByUser(ctx context.Context, userKey string) ([]domain.Achievement, error)
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// storage is the selected persistence backend.
type storage struct {
	driver       string
	progress     progressStore
	actions      actionStore
	goals        goalStore
	sessions     sessionStore
	todos        todoStore
	achievements achievementStore
	tx           txRunner
	pinger       pinger
	close        func()
}

// openStorage builds the repositories for cfg.Storage.Driver. The postgres
// driver connects, optionally migrates, and returns a close func for the pool.
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return newMemoryStorage(memory.NewStore()), nil
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func newMemoryStorage(store *memory.Store) *storage {
	return &storage{
		driver:       config.DriverMemory,
		progress:     store.Progress(),
		actions:      store.Actions(),
		goals:        store.Goals(),
		sessions:     store.Sessions(),
		todos:        store.Todos(),
		achievements: store.Achievements(),
		tx:           memory.NewTxManager(store),
		pinger:       memoryPinger{store: store},
		close:        func() {},
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log *slog.Logger) (*storage, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &storage{
		driver:       config.DriverPostgres,
		progress:     progress.New(pool),
		actions:      action.New(pool),
		goals:        challenge.New(pool),
		sessions:     focus.New(pool),
		todos:        todo.New(pool),
		achievements: achievement.New(pool),
		tx:           postgres.NewTxManager(pool),
		pinger:       pool,
		close:        pool.Close,
	}, nil
}

type memoryPinger struct {
	store *memory.Store
}

func (p memoryPinger) Ping(_ context.Context) error { return p.store.Ping() }
