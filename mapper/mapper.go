// Package mapper implements the entity persistence facade: list, page,
// count, save, update, and remove operations expressed against entity
// descriptors and rendered through the dialect-aware builder. Entities
// cross the boundary as value.Record snapshots, never via reflection.
package mapper

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vireo-db/vireo/builder"
	"github.com/vireo-db/vireo/database"
	"github.com/vireo-db/vireo/entity"
	"github.com/vireo-db/vireo/logger"
	"github.com/vireo-db/vireo/types"
	"github.com/vireo-db/vireo/value"
)

// Mapper binds one entity type to a data source. It is cheap to copy and
// safe for concurrent use; WithTx derives a transaction-scoped view
// without mutating the original.
type Mapper[T entity.Persistable] struct {
	ds      *database.DataSource
	desc    *entity.Descriptor
	factory func() T
	r       *builder.Renderer
	log     logger.Logger
	tx      types.Tx
}

// New builds a Mapper for the entity type described by desc. The factory
// produces fresh instances for row decoding; for read operations the
// produced type must implement entity.Loadable.
func New[T entity.Persistable](ds *database.DataSource, desc *entity.Descriptor, factory func() T) *Mapper[T] {
	return &Mapper[T]{
		ds:      ds,
		desc:    desc,
		factory: factory,
		r:       builder.NewRenderer(ds.Dialect()),
		log:     ds.Logger(),
	}
}

// WithTx returns a copy of the mapper whose operations run inside the
// given transaction instead of the pool.
func (m *Mapper[T]) WithTx(t *Transaction) *Mapper[T] {
	c := *m
	c.tx = t.tx
	return &c
}

// Begin opens a transaction on the mapper's data source.
func (m *Mapper[T]) Begin(ctx context.Context) (*Transaction, error) {
	tx, err := m.ds.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Transaction{tx: tx}, nil
}

// Descriptor returns the entity metadata the mapper operates on.
func (m *Mapper[T]) Descriptor() *entity.Descriptor { return m.desc }

func (m *Mapper[T]) runner() (types.Runner, error) {
	if m.tx != nil {
		return m.tx, nil
	}
	return m.ds.Executor()
}

// List returns every entity matching the Wrapper's predicates, in the
// Wrapper's ordering. A nil Wrapper lists the whole table.
func (m *Mapper[T]) List(ctx context.Context, w *builder.Wrapper) ([]T, error) {
	q, args, err := m.r.Select(m.desc, w)
	if err != nil {
		return nil, err
	}
	recs, err := m.queryRecords(ctx, q, args)
	if err != nil {
		return nil, err
	}
	return m.decodeAll(recs)
}

// SelectOne returns the first entity matching the predicates. The found
// flag is false when no row matched.
func (m *Mapper[T]) SelectOne(ctx context.Context, w *builder.Wrapper) (T, bool, error) {
	var zero T
	q, args, err := m.r.SelectPage(m.desc, w, 1, 0)
	if err != nil {
		return zero, false, err
	}
	recs, err := m.queryRecords(ctx, q, args)
	if err != nil {
		return zero, false, err
	}
	if len(recs) == 0 {
		return zero, false, nil
	}
	inst, err := m.decode(recs[0])
	return inst, err == nil, err
}

// SelectByID looks up a single entity by its identifier column. It fails
// with ErrMissingIdentifier when the descriptor declares none.
func (m *Mapper[T]) SelectByID(ctx context.Context, id value.Value) (T, bool, error) {
	var zero T
	q, args, err := m.r.SelectByID(m.desc, id)
	if err != nil {
		return zero, false, err
	}
	recs, err := m.queryRecords(ctx, q, args)
	if err != nil {
		return zero, false, err
	}
	if len(recs) == 0 {
		return zero, false, nil
	}
	inst, err := m.decode(recs[0])
	return inst, err == nil, err
}

// Count returns the number of rows matching the predicates.
func (m *Mapper[T]) Count(ctx context.Context, w *builder.Wrapper) (int64, error) {
	q, args, err := m.r.Count(m.desc, w)
	if err != nil {
		return 0, err
	}
	run, err := m.runner()
	if err != nil {
		return 0, err
	}
	var total int64
	start := time.Now()
	err = run.QueryRow(ctx, q, params(args)...).Scan(&total)
	m.logQuery(q, len(args), start, err)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Page returns one page of matching entities plus the total match count.
// Page numbers start at 1 (lower values are clamped up); a non-positive
// size is rejected. When the count is zero the data query is skipped.
func (m *Mapper[T]) Page(ctx context.Context, w *builder.Wrapper, page, size int64) (*Page[T], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: page size %d must be positive", types.ErrData, size)
	}
	if page < 1 {
		page = 1
	}

	total, err := m.Count(ctx, w)
	if err != nil {
		return nil, err
	}
	result := &Page[T]{Page: page, Size: size, Total: total}
	if total == 0 {
		return result, nil
	}

	q, args, err := m.r.SelectPage(m.desc, w, uint64(size), uint64((page-1)*size))
	if err != nil {
		return nil, err
	}
	recs, err := m.queryRecords(ctx, q, args)
	if err != nil {
		return nil, err
	}
	result.Records, err = m.decodeAll(recs)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// queryRecords runs a rendered query and decodes the rows into records.
func (m *Mapper[T]) queryRecords(ctx context.Context, q string, args []value.Value) ([]*value.Record, error) {
	run, err := m.runner()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := run.Query(ctx, q, params(args)...)
	m.logQuery(q, len(args), start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rowsToRecords(rows)
}

// exec runs a rendered statement and returns the affected-row count.
func (m *Mapper[T]) exec(ctx context.Context, q string, args []value.Value) (int64, error) {
	run, err := m.runner()
	if err != nil {
		return 0, err
	}
	return m.execOn(ctx, run, q, args)
}

// execOn is exec against an explicit runner, for operations that must
// keep several statements on one connection.
func (m *Mapper[T]) execOn(ctx context.Context, run types.Runner, q string, args []value.Value) (int64, error) {
	start := time.Now()
	res, err := run.Exec(ctx, q, params(args)...)
	m.logQuery(q, len(args), start, err)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

func (m *Mapper[T]) logQuery(q string, argc int, start time.Time, err error) {
	ev := m.log.Debug()
	if err != nil {
		ev = m.log.Error().Err(err)
	}
	ev.Str("table", m.desc.TableName()).
		Str("sql", q).
		Int("params", argc).
		Dur("took", time.Since(start)).
		Msg("statement executed")
}

func (m *Mapper[T]) decode(rec *value.Record) (T, error) {
	inst := m.factory()
	l, ok := any(inst).(entity.Loadable)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %T does not support row decoding", types.ErrData, inst)
	}
	if err := l.FromRecord(rec); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", types.ErrData, err)
	}
	return inst, nil
}

func (m *Mapper[T]) decodeAll(recs []*value.Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		inst, err := m.decode(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// params converts bound values into driver arguments.
func params(args []value.Value) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a.Param()
	}
	return out
}

// rowsToRecords decodes a result set into ordered records, mapping each
// driver cell through value.FromCell.
func rowsToRecords(rows *sql.Rows) ([]*value.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []*value.Record
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := value.NewRecord()
		for i, c := range cols {
			rec.Set(c, value.FromCell(cells[i]))
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
