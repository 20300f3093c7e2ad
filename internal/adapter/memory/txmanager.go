package memory

import (
	"context"
	"errors"
)

// ErrNestedTx is returned when RunInTx is called inside another RunInTx.
var ErrNestedTx = errors.New("nested transactions are not supported")

type txCtxKey struct{}

// TxManager serializes write sequences over a Store. A failed or panicking
// callback restores the store to its state before RunInTx. Repository writes
// made outside RunInTx wait for the running transaction, so a restore never
// drops them.
type TxManager struct {
	store *Store
}

// NewTxManager creates a TxManager bound to store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunInTx executes fn while holding the store's write sequence lock.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txCtxKey{}) != nil {
		return ErrNestedTx
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	snap := m.store.snapshot()

	defer func() {
		if r := recover(); r != nil {
			m.store.restore(snap)
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txCtxKey{}, m.store)); err != nil {
		m.store.restore(snap)
		return err
	}

	return nil
}
