package mapper

import (
	"context"
	"fmt"

	"github.com/vireo-db/vireo/builder"
	"github.com/vireo-db/vireo/entity"
	"github.com/vireo-db/vireo/types"
	"github.com/vireo-db/vireo/value"
)

// Save inserts the entity and returns the generated identifier, fetched
// with the vendor's last-insert query. Vendors without one (Oracle)
// yield a Nil identifier. An identifier column whose value is Nil is
// omitted from the column list so the backend can auto-generate it.
//
// The last-insert query is session-scoped, so the insert and the
// follow-up must share one connection. Outside a caller transaction the
// mapper opens an implicit one to pin the connection for both
// statements.
func (m *Mapper[T]) Save(ctx context.Context, e T) (value.Value, error) {
	cols, row, err := m.insertRow(e)
	if err != nil {
		return value.Nil(), err
	}
	q, args, err := m.r.Insert(m.desc.TableName(), cols, [][]value.Value{row})
	if err != nil {
		return value.Nil(), err
	}

	idQuery, ok := m.r.Dialect().LastInsertIDQuery()
	if !ok {
		_, err := m.exec(ctx, q, args)
		return value.Nil(), err
	}
	if m.tx != nil {
		return m.insertReturningID(ctx, m.tx, q, args, idQuery)
	}

	tx, err := m.ds.Begin(ctx)
	if err != nil {
		return value.Nil(), err
	}
	id, err := m.insertReturningID(ctx, tx, q, args, idQuery)
	if err != nil {
		_ = tx.Rollback()
		return value.Nil(), err
	}
	if err := tx.Commit(); err != nil {
		return value.Nil(), err
	}
	return id, nil
}

// insertReturningID runs the insert and the session-scoped identifier
// query on the same runner.
func (m *Mapper[T]) insertReturningID(ctx context.Context, run types.Runner, q string, args []value.Value, idQuery string) (value.Value, error) {
	if _, err := m.execOn(ctx, run, q, args); err != nil {
		return value.Nil(), err
	}
	var id int64
	if err := run.QueryRow(ctx, idQuery).Scan(&id); err != nil {
		return value.Nil(), err
	}
	return value.Int(id), nil
}

// SaveBatch inserts every entity in one multi-row statement and returns
// the affected-row count. The column list comes from the descriptor;
// rows bind Nil for keys they lack.
func (m *Mapper[T]) SaveBatch(ctx context.Context, es []T) (int64, error) {
	if len(es) == 0 {
		return 0, types.ErrEmptyBatch
	}
	recs := make([]*value.Record, len(es))
	for i, e := range es {
		recs[i] = e.ToRecord()
	}
	cols, err := m.batchColumns(recs)
	if err != nil {
		return 0, err
	}
	rows := make([][]value.Value, len(recs))
	for i, rec := range recs {
		row := make([]value.Value, len(cols))
		for j, c := range cols {
			row[j] = m.fieldValue(rec, c, entity.TriggerInsert)
		}
		rows[i] = row
	}
	q, args, err := m.r.Insert(m.desc.TableName(), cols, rows)
	if err != nil {
		return 0, err
	}
	return m.exec(ctx, q, args)
}

// batchColumns derives the batch insert column list from the descriptor.
// The identifier column is included only when every record carries a
// value for it; a batch mixing set and unset identifiers is rejected so
// no caller-supplied identifier is silently dropped.
func (m *Mapper[T]) batchColumns(recs []*value.Record) ([]string, error) {
	fields := m.desc.ExistingFields()
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Kind == entity.Identifier {
			set := 0
			for _, rec := range recs {
				if !m.fieldValue(rec, f.Name, entity.TriggerInsert).IsNil() {
					set++
				}
			}
			if set == 0 {
				continue
			}
			if set != len(recs) {
				return nil, fmt.Errorf("%w: batch for %q mixes set and unset identifiers", types.ErrData, m.desc.TableName())
			}
		}
		cols = append(cols, f.Name)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: entities for %q produced no columns", types.ErrData, m.desc.TableName())
	}
	return cols, nil
}

// SaveOrUpdate inserts when the identifier value is Nil, otherwise
// updates by identifier. It returns the effective identifier: the
// generated one on insert, the existing one on update.
func (m *Mapper[T]) SaveOrUpdate(ctx context.Context, e T) (value.Value, error) {
	idField, err := m.desc.IdentifierField()
	if err != nil {
		return value.Nil(), err
	}
	id := e.ToRecord().GetOr(idField.Name)
	if id.IsNil() {
		return m.Save(ctx, e)
	}
	if _, err := m.UpdateByID(ctx, e); err != nil {
		return value.Nil(), err
	}
	return id, nil
}

// SaveRecord inserts one raw record into the mapper's table, using the
// record's key order as the column list.
func (m *Mapper[T]) SaveRecord(ctx context.Context, rec *value.Record) (int64, error) {
	return m.SaveRecordBatch(ctx, []*value.Record{rec})
}

// SaveRecordBatch inserts raw records in one multi-row statement.
func (m *Mapper[T]) SaveRecordBatch(ctx context.Context, recs []*value.Record) (int64, error) {
	q, args, err := m.r.InsertRecords(m.desc.TableName(), recs)
	if err != nil {
		return 0, err
	}
	return m.exec(ctx, q, args)
}

// Update applies set-clauses to every row matching the Wrapper's
// predicates. Explicit Set calls on the Wrapper win; when it carries
// none, the entity's own plain columns become the set-clauses.
func (m *Mapper[T]) Update(ctx context.Context, e T, w *builder.Wrapper) (int64, error) {
	sets := w.FieldsSet()
	if len(sets) == 0 {
		sets = m.entitySets(e)
	}
	q, args, err := m.r.Update(m.desc.TableName(), sets, w)
	if err != nil {
		return 0, err
	}
	return m.exec(ctx, q, args)
}

// UpdateByID updates the entity's row by its identifier value. A Nil
// identifier fails with ErrMissingIdentifierValue before any SQL runs.
func (m *Mapper[T]) UpdateByID(ctx context.Context, e T) (int64, error) {
	idField, err := m.desc.IdentifierField()
	if err != nil {
		return 0, err
	}
	id := e.ToRecord().GetOr(idField.Name)
	if id.IsNil() {
		return 0, fmt.Errorf("%w: table %q", types.ErrMissingIdentifierValue, m.desc.TableName())
	}
	sets := m.entitySets(e)
	if len(sets) == 0 {
		return 0, fmt.Errorf("%w: entity for %q has no updatable columns", types.ErrData, m.desc.TableName())
	}
	q, args, err := m.r.UpdateByID(m.desc.TableName(), sets, idField.Name, id)
	if err != nil {
		return 0, err
	}
	return m.exec(ctx, q, args)
}

// Remove deletes every row matching the predicates and returns the
// affected count. An empty Wrapper deletes the whole table.
func (m *Mapper[T]) Remove(ctx context.Context, w *builder.Wrapper) (int64, error) {
	q, args, err := m.r.Delete(m.desc.TableName(), w)
	if err != nil {
		return 0, err
	}
	return m.exec(ctx, q, args)
}

// RemoveByID deletes the row with the given identifier value.
func (m *Mapper[T]) RemoveByID(ctx context.Context, id value.Value) (int64, error) {
	idField, err := m.desc.IdentifierField()
	if err != nil {
		return 0, err
	}
	q, args, err := m.r.DeleteByID(m.desc.TableName(), idField.Name, id)
	if err != nil {
		return 0, err
	}
	return m.exec(ctx, q, args)
}

// RemoveByIDs deletes every row whose identifier is in ids, binding one
// parameter per id.
func (m *Mapper[T]) RemoveByIDs(ctx context.Context, ids []value.Value) (int64, error) {
	idField, err := m.desc.IdentifierField()
	if err != nil {
		return 0, err
	}
	q, args, err := m.r.DeleteByIDs(m.desc.TableName(), idField.Name, ids)
	if err != nil {
		return 0, err
	}
	return m.exec(ctx, q, args)
}

// insertRow snapshots the entity into an insert column list and value
// row, applying insert-trigger fills and dropping a Nil identifier.
func (m *Mapper[T]) insertRow(e T) ([]string, []value.Value, error) {
	rec := e.ToRecord()
	fields := m.desc.ExistingFields()
	cols := make([]string, 0, len(fields))
	row := make([]value.Value, 0, len(fields))
	for _, f := range fields {
		v := m.fieldValue(rec, f.Name, entity.TriggerInsert)
		if f.Kind == entity.Identifier && v.IsNil() {
			continue
		}
		cols = append(cols, f.Name)
		row = append(row, v)
	}
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("%w: entity for %q produced no columns", types.ErrData, m.desc.TableName())
	}
	return cols, row, nil
}

// entitySets snapshots the entity's plain columns into set-clauses,
// applying update-trigger fills.
func (m *Mapper[T]) entitySets(e T) []builder.SetClause {
	rec := e.ToRecord()
	fields := m.desc.PlainFields()
	sets := make([]builder.SetClause, 0, len(fields))
	for _, f := range fields {
		sets = append(sets, builder.SetClause{
			Column: f.Name,
			Value:  m.fieldValue(rec, f.Name, entity.TriggerUpdate),
		})
	}
	return sets
}

// fieldValue resolves one bound column value: the fill override when its
// trigger matches the operation, otherwise the record's own value.
func (m *Mapper[T]) fieldValue(rec *value.Record, column string, t entity.Trigger) value.Value {
	for _, f := range m.desc.Fields() {
		if f.Name == column {
			if f.Fill.Applies(t) {
				return f.Fill.Resolve()
			}
			break
		}
	}
	return rec.GetOr(column)
}
