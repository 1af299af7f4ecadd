package builder

import (
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/vireo-db/vireo/dialect"
	"github.com/vireo-db/vireo/entity"
	"github.com/vireo-db/vireo/types"
	"github.com/vireo-db/vireo/value"
)

// Renderer turns a logical operation plus descriptor and Wrapper output
// into final SQL text and one ordered parameter vector whose order
// matches the placeholders left to right. All vendor variance is
// delegated to the Dialect; the renderer itself never branches on
// vendor.
type Renderer struct {
	d dialect.Dialect
}

// NewRenderer returns a Renderer for the given dialect.
func NewRenderer(d dialect.Dialect) *Renderer {
	return &Renderer{d: d}
}

// Dialect returns the renderer's dialect.
func (r *Renderer) Dialect() dialect.Dialect { return r.d }

func (r *Renderer) stmt() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(r.d.Placeholder())
}

func validateTable(desc *entity.Descriptor) error {
	if desc == nil || desc.TableName() == "" {
		return types.ErrMissingTable
	}
	return nil
}

// selectColumns resolves the projection: an explicit Wrapper projection
// wins, otherwise every existing descriptor column, quoted.
func (r *Renderer) selectColumns(desc *entity.Descriptor, w *Wrapper) []string {
	if w != nil && len(w.Projection()) > 0 {
		return w.Projection()
	}
	fields := desc.ExistingFields()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = r.d.Quote(f.Name)
	}
	return cols
}

func (r *Renderer) applyWrapper(b squirrel.SelectBuilder, w *Wrapper) squirrel.SelectBuilder {
	if w == nil {
		return b
	}
	if w.HasConditions() {
		b = b.Where(w.Sqlizer())
	}
	if orders := w.Orders(); len(orders) > 0 {
		b = b.OrderBy(orders...)
	}
	return b
}

func finish(b squirrel.Sqlizer) (string, []value.Value, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return "", nil, err
	}
	return sql, coerceValues(args), nil
}

// Select renders the list/select-one query for the descriptor.
func (r *Renderer) Select(desc *entity.Descriptor, w *Wrapper) (string, []value.Value, error) {
	if err := validateTable(desc); err != nil {
		return "", nil, err
	}
	b := r.stmt().Select(r.selectColumns(desc, w)...).From(desc.TableName())
	return finish(r.applyWrapper(b, w))
}

// SelectPage renders the page data query with vendor pagination syntax.
func (r *Renderer) SelectPage(desc *entity.Descriptor, w *Wrapper, limit, offset uint64) (string, []value.Value, error) {
	if err := validateTable(desc); err != nil {
		return "", nil, err
	}
	b := r.stmt().Select(r.selectColumns(desc, w)...).From(desc.TableName())
	b = r.applyWrapper(b, w)
	return finish(r.d.Paginate(b, limit, offset))
}

// SelectByID renders the single-row lookup on the identifier column.
// It fails with ErrMissingIdentifier before any SQL is built when the
// descriptor declares no identifier.
func (r *Renderer) SelectByID(desc *entity.Descriptor, id value.Value) (string, []value.Value, error) {
	if err := validateTable(desc); err != nil {
		return "", nil, err
	}
	idField, err := desc.IdentifierField()
	if err != nil {
		return "", nil, err
	}
	b := r.stmt().Select(r.selectColumns(desc, nil)...).From(desc.TableName())
	b = b.Where(squirrel.Eq{r.d.Quote(idField.Name): id})
	return finish(r.d.Paginate(b, 1, 0))
}

// Count renders the COUNT query for the Wrapper's predicates.
func (r *Renderer) Count(desc *entity.Descriptor, w *Wrapper) (string, []value.Value, error) {
	if err := validateTable(desc); err != nil {
		return "", nil, err
	}
	b := r.stmt().Select("COUNT(1)").From(desc.TableName())
	if w != nil && w.HasConditions() {
		b = b.Where(w.Sqlizer())
	}
	return finish(b)
}

// Insert renders a (possibly multi-row) INSERT. Each row becomes one
// parenthesized value tuple; for numbered-placeholder dialects the
// numbering continues monotonically across tuples, for the un-numbered
// dialect every slot stays ?. Column order is the caller's order.
func (r *Renderer) Insert(table string, columns []string, rows [][]value.Value) (string, []value.Value, error) {
	if table == "" {
		return "", nil, types.ErrMissingTable
	}
	if len(rows) == 0 {
		return "", nil, types.ErrEmptyBatch
	}
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("%w: insert into %q with no columns", types.ErrData, table)
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = r.d.Quote(c)
	}
	b := r.stmt().Insert(table).Columns(quoted...)
	for _, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("%w: insert row binds %d values for %d columns", types.ErrData, len(row), len(columns))
		}
		b = b.Values(toAnyParams(row)...)
	}
	return finish(b)
}

// InsertRecords renders the map-based insert path: the column list is
// taken from the first record's key order, and every record binds one
// value per column, Nil when the record lacks the key.
func (r *Renderer) InsertRecords(table string, recs []*value.Record) (string, []value.Value, error) {
	if len(recs) == 0 {
		return "", nil, types.ErrEmptyBatch
	}
	columns := recs[0].Keys()
	rows := make([][]value.Value, len(recs))
	for i, rec := range recs {
		row := make([]value.Value, len(columns))
		for j, c := range columns {
			row[j] = rec.GetOr(c)
		}
		rows[i] = row
	}
	return r.Insert(table, columns, rows)
}

// Update renders UPDATE ... SET ... [WHERE ...] from explicit
// set-clauses. SET parameters precede WHERE parameters, and numbered
// placeholders keep incrementing across the clause boundary.
func (r *Renderer) Update(table string, sets []SetClause, w *Wrapper) (string, []value.Value, error) {
	if table == "" {
		return "", nil, types.ErrMissingTable
	}
	if len(sets) == 0 {
		return "", nil, fmt.Errorf("%w: update on %q has no set clauses", types.ErrData, table)
	}
	b := r.stmt().Update(table)
	for _, s := range sets {
		b = b.Set(r.d.Quote(s.Column), s.Value)
	}
	if w != nil && w.HasConditions() {
		b = b.Where(w.Sqlizer())
	}
	return finish(b)
}

// UpdateByID renders UPDATE ... SET ... WHERE id = ?. The identifier
// parameter is numbered last: set-clause count + 1 on numbered dialects.
func (r *Renderer) UpdateByID(table string, sets []SetClause, idColumn string, id value.Value) (string, []value.Value, error) {
	if table == "" {
		return "", nil, types.ErrMissingTable
	}
	if len(sets) == 0 {
		return "", nil, fmt.Errorf("%w: update on %q has no set clauses", types.ErrData, table)
	}
	b := r.stmt().Update(table)
	for _, s := range sets {
		b = b.Set(r.d.Quote(s.Column), s.Value)
	}
	b = b.Where(squirrel.Eq{r.d.Quote(idColumn): id})
	return finish(b)
}

// Delete renders DELETE with the Wrapper's predicates. An empty Wrapper
// deletes every row; callers decide whether to allow that.
func (r *Renderer) Delete(table string, w *Wrapper) (string, []value.Value, error) {
	if table == "" {
		return "", nil, types.ErrMissingTable
	}
	b := r.stmt().Delete(table)
	if w != nil && w.HasConditions() {
		b = b.Where(w.Sqlizer())
	}
	return finish(b)
}

// DeleteByID renders the single-row delete on the identifier column.
func (r *Renderer) DeleteByID(table, idColumn string, id value.Value) (string, []value.Value, error) {
	if table == "" {
		return "", nil, types.ErrMissingTable
	}
	b := r.stmt().Delete(table).Where(squirrel.Eq{r.d.Quote(idColumn): id})
	return finish(b)
}

// DeleteByIDs renders DELETE ... WHERE id IN (...), binding one
// parameter per id.
func (r *Renderer) DeleteByIDs(table, idColumn string, ids []value.Value) (string, []value.Value, error) {
	if table == "" {
		return "", nil, types.ErrMissingTable
	}
	if len(ids) == 0 {
		return "", nil, fmt.Errorf("%w: delete on %q with empty id list", types.ErrData, table)
	}
	elems := make([]any, len(ids))
	for i, id := range ids {
		elems[i] = id
	}
	b := r.stmt().Delete(table).Where(squirrel.Eq{r.d.Quote(idColumn): elems})
	return finish(b)
}

func toAnyParams(vals []value.Value) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}
