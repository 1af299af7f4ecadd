package mapper

import "github.com/vireo-db/vireo/types"

// Transaction wraps an open backend transaction with explicit outcome
// tracking, so deferring Close is always safe: a transaction neither
// committed nor rolled back is rolled back on Close.
type Transaction struct {
	tx         types.Tx
	committed  bool
	rolledBack bool
}

// Commit commits the transaction. Committing twice is a no-op.
func (t *Transaction) Commit() error {
	if t.committed || t.rolledBack {
		return nil
	}
	if err := t.tx.Commit(); err != nil {
		return err
	}
	t.committed = true
	return nil
}

// Rollback rolls the transaction back. Rolling back after an outcome is
// a no-op.
func (t *Transaction) Rollback() error {
	if t.committed || t.rolledBack {
		return nil
	}
	if err := t.tx.Rollback(); err != nil {
		return err
	}
	t.rolledBack = true
	return nil
}

// Close rolls back unless the transaction already reached an outcome.
// Intended for defer right after Begin.
func (t *Transaction) Close() error {
	return t.Rollback()
}

// Tx exposes the underlying transaction for direct statement execution.
func (t *Transaction) Tx() types.Tx {
	return t.tx
}
