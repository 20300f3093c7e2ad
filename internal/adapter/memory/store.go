// Package memory implements every repository over in-process maps. It backs
// the "memory" storage driver and the service-level tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/hustle-xp/internal/domain"
)

// Store owns all state. Repositories are thin views over it so that a single
// TxManager can snapshot and restore everything at once.
type Store struct {
	mu sync.RWMutex
	// txMu is held for the whole of a transaction and for every write made
	// outside one, so a rollback only discards the transaction's own writes.
	txMu sync.Mutex

	progress     map[string]domain.UserProgress
	actions      []domain.ActionEvent
	goals        map[uuid.UUID]domain.ChallengeGoal
	sessions     map[uuid.UUID]domain.FocusSession
	todos        map[uuid.UUID]domain.Todo
	achievements map[string]map[domain.AchievementType]domain.Achievement
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		progress:     make(map[string]domain.UserProgress),
		goals:        make(map[uuid.UUID]domain.ChallengeGoal),
		sessions:     make(map[uuid.UUID]domain.FocusSession),
		todos:        make(map[uuid.UUID]domain.Todo),
		achievements: make(map[string]map[domain.AchievementType]domain.Achievement),
	}
}

// Progress returns the user progress repository.
func (s *Store) Progress() *ProgressRepo { return &ProgressRepo{s: s} }

// Actions returns the action ledger repository.
func (s *Store) Actions() *ActionRepo { return &ActionRepo{s: s} }

// Goals returns the challenge goal repository.
func (s *Store) Goals() *GoalRepo { return &GoalRepo{s: s} }

// Sessions returns the focus session repository.
func (s *Store) Sessions() *SessionRepo { return &SessionRepo{s: s} }

// Todos returns the todo repository.
func (s *Store) Todos() *TodoRepo { return &TodoRepo{s: s} }

// Achievements returns the achievement repository.
func (s *Store) Achievements() *AchievementRepo { return &AchievementRepo{s: s} }

// Ping always succeeds; it lets the store stand in for a database in health checks.
func (s *Store) Ping() error { return nil }

type snapshot struct {
	progress     map[string]domain.UserProgress
	actions      []domain.ActionEvent
	goals        map[uuid.UUID]domain.ChallengeGoal
	sessions     map[uuid.UUID]domain.FocusSession
	todos        map[uuid.UUID]domain.Todo
	achievements map[string]map[domain.AchievementType]domain.Achievement
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ach := make(map[string]map[domain.AchievementType]domain.Achievement, len(s.achievements))
	for k, v := range s.achievements {
		ach[k] = maps.Clone(v)
	}

	return snapshot{
		progress:     maps.Clone(s.progress),
		actions:      slices.Clone(s.actions),
		goals:        maps.Clone(s.goals),
		sessions:     maps.Clone(s.sessions),
		todos:        maps.Clone(s.todos),
		achievements: ach,
	}
}

// lockWrite takes the write lock for one repository call. Outside a
// transaction on this store it first waits for any running transaction.
func (s *Store) lockWrite(ctx context.Context) (unlock func()) {
	if ctx.Value(txCtxKey{}) == s {
		s.mu.Lock()
		return s.mu.Unlock
	}

	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress = snap.progress
	s.actions = snap.actions
	s.goals = snap.goals
	s.sessions = snap.sessions
	s.todos = snap.todos
	s.achievements = snap.achievements
}
