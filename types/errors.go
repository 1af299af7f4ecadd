// Package types contains the core interface and error definitions shared
// by the builder, database, and mapper packages. Keeping them here avoids
// import cycles and makes them easy to mock in tests.
package types

import "errors"

// Sentinel errors for mapper and data source failures. Match them with
// errors.Is; backend failures wrap the driver error instead.
var (
	// ErrMissingTable is returned when a descriptor resolves to an empty table name.
	ErrMissingTable = errors.New("missing table name")

	// ErrMissingIdentifier is returned when an operation requires an
	// identifier field that the descriptor does not declare.
	ErrMissingIdentifier = errors.New("descriptor has no identifier field")

	// ErrMissingIdentifierValue is returned when an update-by-id is
	// invoked on an entity whose identifier value is nil.
	ErrMissingIdentifierValue = errors.New("identifier value is nil")

	// ErrEmptyBatch is returned when a batch save is invoked with zero entities.
	ErrEmptyBatch = errors.New("batch cannot be empty")

	// ErrUnsupportedBackend is returned when a connection URL scheme is unrecognized.
	ErrUnsupportedBackend = errors.New("unsupported backend scheme")

	// ErrURLParse is returned for malformed connection strings.
	ErrURLParse = errors.New("invalid connection url")

	// ErrPoolUnavailable is returned when an operation runs against a
	// data source whose executor was never initialized.
	ErrPoolUnavailable = errors.New("data source not initialized")

	// ErrData is returned for general precondition violations, such as a
	// zero page size or an entity that cannot be decoded.
	ErrData = errors.New("invalid data")
)
