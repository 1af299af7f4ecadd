// Package database opens backend connection pools from a configuration
// URL and bundles them with their dialect as a DataSource.
package database

import "github.com/vireo-db/vireo/types"

// Re-exported aliases so callers can depend on this package alone.
type (
	// Runner is the minimal query execution surface shared by
	// connections and transactions.
	Runner = types.Runner

	// Tx is an open transaction.
	Tx = types.Tx

	// Executor is a live backend connection pool.
	Executor = types.Executor

	// Row is a single scannable result row.
	Row = types.Row

	// Vendor identifies a database backend.
	Vendor = types.Vendor
)
