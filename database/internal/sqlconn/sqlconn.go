// Package sqlconn wraps a database/sql pool as a types.Executor. The
// vendor packages build the driver-specific DSN and hand the opened pool
// to New; everything after that point is vendor-independent.
package sqlconn

import (
	"context"
	"database/sql"
	"time"

	"github.com/vireo-db/vireo/config"
	"github.com/vireo-db/vireo/logger"
	"github.com/vireo-db/vireo/types"
)

// pingTimeout bounds the connectivity probe performed on open.
const pingTimeout = 10 * time.Second

// Conn is a types.Executor backed by a *sql.DB pool.
type Conn struct {
	db     *sql.DB
	vendor types.Vendor
	log    logger.Logger
}

var _ types.Executor = (*Conn)(nil)

// New configures the pool from cfg, verifies connectivity with a bounded
// ping, and returns the wrapped connection. The pool is closed on ping
// failure so callers never hold a half-open handle.
func New(db *sql.DB, vendor types.Vendor, cfg *config.DataSource, log logger.Logger) (*Conn, error) {
	if log == nil {
		log = logger.Nop()
	}
	configurePool(db, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info().
		Str("vendor", vendor).
		Int("max_conns", cfg.MaxConns).
		Msg("database connection established")

	return &Conn{db: db, vendor: vendor, log: log}, nil
}

func configurePool(db *sql.DB, cfg *config.DataSource) {
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

// Query executes a query that returns rows.
func (c *Conn) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query expected to return at most one row.
func (c *Conn) QueryRow(ctx context.Context, query string, args ...any) types.Row {
	return types.NewRowFromSQL(c.db.QueryRowContext(ctx, query, args...))
}

// Exec executes a statement without returning rows.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

// Begin starts a transaction with default isolation.
func (c *Conn) Begin(ctx context.Context) (types.Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

// Vendor returns the backend identifier.
func (c *Conn) Vendor() types.Vendor {
	return c.vendor
}

// Health checks connectivity.
func (c *Conn) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Stats returns pool statistics for diagnostics.
func (c *Conn) Stats() (map[string]any, error) {
	s := c.db.Stats()
	return map[string]any{
		"vendor":               c.vendor,
		"open_connections":     s.OpenConnections,
		"in_use":               s.InUse,
		"idle":                 s.Idle,
		"wait_count":           s.WaitCount,
		"wait_duration_ms":     s.WaitDuration.Milliseconds(),
		"max_open_connections": s.MaxOpenConnections,
	}, nil
}

// Close releases the pool.
func (c *Conn) Close() error {
	c.log.Debug().Str("vendor", c.vendor).Msg("closing database connection")
	return c.db.Close()
}

type sqlTx struct {
	tx *sql.Tx
}

var _ types.Tx = (*sqlTx)(nil)

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *sqlTx) QueryRow(ctx context.Context, query string, args ...any) types.Row {
	return types.NewRowFromSQL(t.tx.QueryRowContext(ctx, query, args...))
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *sqlTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback() error {
	return t.tx.Rollback()
}
