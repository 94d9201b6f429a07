package memory

import (
	"context"

	"noteshelf/internal/domain/repositories"
)

type txContextKey struct{}

// TransactionManager gives ExecTx all-or-nothing semantics. Writes made
// through a transaction context are logged and undone when fn fails; writes
// from other callers are left alone.
type TransactionManager struct {
	store *Store
}

var _ repositories.TransactionManager = (*TransactionManager)(nil)

func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if ctx.Value(txContextKey{}) != nil {
		return fn(ctx)
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	log := &undoLog{}
	if err := fn(context.WithValue(ctx, txContextKey{}, log)); err != nil {
		tm.store.rollback(log)
		return err
	}
	return nil
}
