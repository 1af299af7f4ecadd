package types

import (
	"context"
	"database/sql"
	"errors"
)

// Vendor identifies a database backend.
type Vendor = string

const (
	MySQL      Vendor = "mysql"
	PostgreSQL Vendor = "postgresql"
	SQLite     Vendor = "sqlite"
	Oracle     Vendor = "oracle"
)

// Row represents a single result set row with basic scanning behaviour.
type Row interface {
	Scan(dest ...any) error
	Err() error
}

type sqlRowAdapter struct {
	row *sql.Row
}

// NewRowFromSQL wraps the provided *sql.Row in a Row.
// If row is nil, NewRowFromSQL returns nil.
func NewRowFromSQL(row *sql.Row) Row {
	if row == nil {
		return nil
	}
	return &sqlRowAdapter{row: row}
}

func (r *sqlRowAdapter) Scan(dest ...any) error {
	if r == nil || r.row == nil {
		return errors.New("sqlRowAdapter: underlying sql.Row is nil")
	}
	return r.row.Scan(dest...)
}

func (r *sqlRowAdapter) Err() error {
	if r == nil || r.row == nil {
		return errors.New("sqlRowAdapter: underlying sql.Row is nil")
	}
	return r.row.Err()
}

// Runner is the minimal query execution surface shared by live
// connections and open transactions. Every mapper operation runs against
// a Runner, so rebinding an operation into a transaction is a matter of
// swapping the runner.
type Runner interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Tx is an open transaction. It wraps one connection exclusively until
// Commit or Rollback; nested transactions are not supported.
type Tx interface {
	Runner

	Commit() error
	Rollback() error
}

// Executor is a live backend connection pool. It accepts SQL text plus
// ordered parameters and returns rows or an affected-row count; pooling,
// timeouts, and cancellation belong to the driver underneath.
type Executor interface {
	Runner

	// Begin starts a new transaction with default isolation.
	Begin(ctx context.Context) (Tx, error)

	// Vendor returns the backend identifier (mysql, postgresql, ...).
	Vendor() Vendor

	// Health checks connectivity.
	Health(ctx context.Context) error

	// Stats returns driver pool statistics for diagnostics.
	Stats() (map[string]any, error)

	// Close releases the underlying pool.
	Close() error
}
