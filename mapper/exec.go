package mapper

import (
	"context"

	"github.com/vireo-db/vireo/value"
)

// ExecIter runs raw SQL with bound values and returns every result row
// as an ordered record. The SQL must use the mapper's dialect placeholder
// style.
func (m *Mapper[T]) ExecIter(ctx context.Context, q string, args ...value.Value) ([]*value.Record, error) {
	return m.queryRecords(ctx, q, args)
}

// ExecFirst runs raw SQL and returns the first result row. The found
// flag is false when the query matched nothing.
func (m *Mapper[T]) ExecFirst(ctx context.Context, q string, args ...value.Value) (*value.Record, bool, error) {
	recs, err := m.queryRecords(ctx, q, args)
	if err != nil {
		return nil, false, err
	}
	if len(recs) == 0 {
		return nil, false, nil
	}
	return recs[0], true, nil
}

// ExecDrop runs raw SQL for its side effect and returns the affected-row
// count, discarding any result set.
func (m *Mapper[T]) ExecDrop(ctx context.Context, q string, args ...value.Value) (int64, error) {
	return m.exec(ctx, q, args)
}
