package database

import (
	"context"

	"github.com/vireo-db/vireo/dialect"
	"github.com/vireo-db/vireo/logger"
	"github.com/vireo-db/vireo/types"
)

// DataSource pairs an open connection pool with the dialect that renders
// SQL for it. It is the handle mappers are built from.
type DataSource struct {
	exec types.Executor
	d    dialect.Dialect
	log  logger.Logger
}

// NewDataSource assembles a DataSource from its parts. A nil logger is
// replaced with a no-op one.
func NewDataSource(exec types.Executor, d dialect.Dialect, log logger.Logger) *DataSource {
	if log == nil {
		log = logger.Nop()
	}
	return &DataSource{exec: exec, d: d, log: log}
}

// Executor returns the underlying pool, or ErrPoolUnavailable when the
// data source was never connected.
func (ds *DataSource) Executor() (types.Executor, error) {
	if ds == nil || ds.exec == nil {
		return nil, types.ErrPoolUnavailable
	}
	return ds.exec, nil
}

// Dialect returns the SQL dialect bound to this data source.
func (ds *DataSource) Dialect() dialect.Dialect {
	return ds.d
}

// Logger returns the data source logger.
func (ds *DataSource) Logger() logger.Logger {
	return ds.log
}

// Begin starts a transaction on the underlying pool.
func (ds *DataSource) Begin(ctx context.Context) (types.Tx, error) {
	exec, err := ds.Executor()
	if err != nil {
		return nil, err
	}
	return exec.Begin(ctx)
}

// Health checks connectivity of the underlying pool.
func (ds *DataSource) Health(ctx context.Context) error {
	exec, err := ds.Executor()
	if err != nil {
		return err
	}
	return exec.Health(ctx)
}

// Close releases the underlying pool. Closing a never-connected data
// source is a no-op.
func (ds *DataSource) Close() error {
	if ds == nil || ds.exec == nil {
		return nil
	}
	return ds.exec.Close()
}
