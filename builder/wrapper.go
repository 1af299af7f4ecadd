// Package builder implements the dialect-neutral condition accumulator
// (Wrapper) and the dialect-aware statement renderer. A Wrapper collects
// predicate fragments, set-clauses, projection, and ordering in call
// order; the Renderer combines it with entity metadata into final SQL
// whose placeholder style and numbering match the target backend.
package builder

import (
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/vireo-db/vireo/value"
)

// SetClause is one accumulated update target: column → value.
type SetClause struct {
	Column string
	Value  value.Value
}

// fragment is one accumulated predicate plus the connective that joins
// it to the previous fragment.
type fragment struct {
	or bool
	sq squirrel.Sqlizer
}

// Wrapper accumulates predicates and clauses for a single logical call.
// Fragment order equals generated clause order, and each fragment's
// bound values keep their relative position in the final parameter list.
// A Wrapper is owned by one caller for one call; use Clone to branch.
//
// Every predicate method takes an explicit apply guard so conditional
// predicates compose without branching at the call site: a false guard
// drops the fragment entirely (it is not emitted as "always true").
type Wrapper struct {
	fragments  []fragment
	sets       []SetClause
	projection []string
	orders     []string
}

// NewWrapper returns an empty Wrapper.
func NewWrapper() *Wrapper {
	return &Wrapper{}
}

func (w *Wrapper) add(or bool, sq squirrel.Sqlizer) *Wrapper {
	w.fragments = append(w.fragments, fragment{or: or, sq: sq})
	return w
}

// Eq appends column = value.
func (w *Wrapper) Eq(apply bool, column string, v any) *Wrapper {
	if !apply {
		return w
	}
	return w.add(false, squirrel.Eq{column: value.Of(v)})
}

// Ne appends column <> value.
func (w *Wrapper) Ne(apply bool, column string, v any) *Wrapper {
	if !apply {
		return w
	}
	return w.add(false, squirrel.NotEq{column: value.Of(v)})
}

// Gt appends column > value.
func (w *Wrapper) Gt(apply bool, column string, v any) *Wrapper {
	if !apply {
		return w
	}
	return w.add(false, squirrel.Gt{column: value.Of(v)})
}

// Ge appends column >= value.
func (w *Wrapper) Ge(apply bool, column string, v any) *Wrapper {
	if !apply {
		return w
	}
	return w.add(false, squirrel.GtOrEq{column: value.Of(v)})
}

// Lt appends column < value.
func (w *Wrapper) Lt(apply bool, column string, v any) *Wrapper {
	if !apply {
		return w
	}
	return w.add(false, squirrel.Lt{column: value.Of(v)})
}

// Le appends column <= value.
func (w *Wrapper) Le(apply bool, column string, v any) *Wrapper {
	if !apply {
		return w
	}
	return w.add(false, squirrel.LtOrEq{column: value.Of(v)})
}

// Like appends column LIKE pattern.
func (w *Wrapper) Like(apply bool, column string, pattern any) *Wrapper {
	if !apply {
		return w
	}
	return w.add(false, squirrel.Like{column: value.Of(pattern)})
}

// NotLike appends column NOT LIKE pattern.
func (w *Wrapper) NotLike(apply bool, column string, pattern any) *Wrapper {
	if !apply {
		return w
	}
	return w.add(false, squirrel.NotLike{column: value.Of(pattern)})
}

// In appends column IN (values...). Every element is bound as its own
// ordered parameter; values are never interpolated into the SQL text.
func (w *Wrapper) In(apply bool, column string, vals ...any) *Wrapper {
	if !apply {
		return w
	}
	return w.add(false, squirrel.Eq{column: coerceSlice(vals)})
}

// NotIn appends column NOT IN (values...), parameter-bound like In.
func (w *Wrapper) NotIn(apply bool, column string, vals ...any) *Wrapper {
	if !apply {
		return w
	}
	return w.add(false, squirrel.NotEq{column: coerceSlice(vals)})
}

// Between appends column >= lo AND column <= hi, binding exactly two
// parameters.
func (w *Wrapper) Between(apply bool, column string, lo, hi any) *Wrapper {
	if !apply {
		return w
	}
	return w.add(false, squirrel.And{
		squirrel.GtOrEq{column: value.Of(lo)},
		squirrel.LtOrEq{column: value.Of(hi)},
	})
}

// NotBetween appends column < lo OR column > hi.
func (w *Wrapper) NotBetween(apply bool, column string, lo, hi any) *Wrapper {
	if !apply {
		return w
	}
	return w.add(false, squirrel.Or{
		squirrel.Lt{column: value.Of(lo)},
		squirrel.Gt{column: value.Of(hi)},
	})
}

// IsNull appends column IS NULL.
func (w *Wrapper) IsNull(apply bool, column string) *Wrapper {
	if !apply {
		return w
	}
	return w.add(false, squirrel.Eq{column: nil})
}

// IsNotNull appends column IS NOT NULL.
func (w *Wrapper) IsNotNull(apply bool, column string) *Wrapper {
	if !apply {
		return w
	}
	return w.add(false, squirrel.NotEq{column: nil})
}

// And appends a parenthesized group joined with AND. The group is built
// by fn on a nested Wrapper; an empty group is dropped.
func (w *Wrapper) And(apply bool, fn func(*Wrapper)) *Wrapper {
	return w.group(apply, false, fn)
}

// Or appends a parenthesized group joined with OR.
func (w *Wrapper) Or(apply bool, fn func(*Wrapper)) *Wrapper {
	return w.group(apply, true, fn)
}

func (w *Wrapper) group(apply, or bool, fn func(*Wrapper)) *Wrapper {
	if !apply || fn == nil {
		return w
	}
	nested := NewWrapper()
	fn(nested)
	if len(nested.fragments) == 0 {
		return w
	}
	return w.add(or, grouped{inner: conjunction{fragments: nested.fragments}})
}

// OrderBy appends an ordering on the given columns; asc selects the
// direction for all of them.
func (w *Wrapper) OrderBy(apply, asc bool, columns ...string) *Wrapper {
	if !apply {
		return w
	}
	dir := " ASC"
	if !asc {
		dir = " DESC"
	}
	for _, c := range columns {
		w.orders = append(w.orders, c+dir)
	}
	return w
}

// Select sets the projection column list. When empty the renderer falls
// back to the descriptor's existing columns, or * for raw paths.
func (w *Wrapper) Select(columns ...string) *Wrapper {
	w.projection = append(w.projection, columns...)
	return w
}

// Set records an update target column and its value.
func (w *Wrapper) Set(apply bool, column string, v any) *Wrapper {
	if !apply {
		return w
	}
	w.sets = append(w.sets, SetClause{Column: column, Value: value.Of(v)})
	return w
}

// FieldsSet exposes the accumulated set-clauses in call order for the
// update renderer. Querying it does not consume the predicate fragments;
// both views of the Wrapper stay available for the same operation.
func (w *Wrapper) FieldsSet() []SetClause {
	return w.sets
}

// HasConditions reports whether any predicate fragment was accumulated.
func (w *Wrapper) HasConditions() bool {
	return len(w.fragments) > 0
}

// Sqlizer returns the combined predicate expression for embedding into
// a statement builder. Call HasConditions first; an empty Wrapper yields
// an empty expression.
func (w *Wrapper) Sqlizer() squirrel.Sqlizer {
	return conjunction{fragments: w.fragments}
}

// SQLSegment renders the predicate fragments (not the set-clauses) into
// a boolean expression usable after WHERE, plus the ordered parameter
// list bound to it. The number of placeholders always equals the number
// of returned values.
func (w *Wrapper) SQLSegment() (string, []value.Value, error) {
	if len(w.fragments) == 0 {
		return "", nil, nil
	}
	sql, args, err := w.Sqlizer().ToSql()
	if err != nil {
		return "", nil, err
	}
	return sql, coerceValues(args), nil
}

// SelectSQL renders the projection list, defaulting to * when empty.
func (w *Wrapper) SelectSQL() string {
	if len(w.projection) == 0 {
		return "*"
	}
	return strings.Join(w.projection, ", ")
}

// Projection returns the raw projection columns.
func (w *Wrapper) Projection() []string { return w.projection }

// Orders returns the rendered order-by terms in call order.
func (w *Wrapper) Orders() []string { return w.orders }

// Clone returns an independent copy; mutating the clone does not affect
// the original.
func (w *Wrapper) Clone() *Wrapper {
	c := &Wrapper{
		fragments:  make([]fragment, len(w.fragments)),
		sets:       make([]SetClause, len(w.sets)),
		projection: make([]string, len(w.projection)),
		orders:     make([]string, len(w.orders)),
	}
	copy(c.fragments, w.fragments)
	copy(c.sets, w.sets)
	copy(c.projection, w.projection)
	copy(c.orders, w.orders)
	return c
}

// conjunction joins fragments with their per-fragment connectives. It
// keeps the dialect-neutral ? marker; placeholder conversion happens
// once per statement so numbered formats stay globally monotonic.
type conjunction struct {
	fragments []fragment
}

func (c conjunction) ToSql() (string, []any, error) {
	var sb strings.Builder
	var args []any
	for i, f := range c.fragments {
		sql, fargs, err := f.sq.ToSql()
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		if i > 0 {
			if f.or {
				sb.WriteString(" OR ")
			} else {
				sb.WriteString(" AND ")
			}
		}
		sb.WriteString(sql)
		args = append(args, fargs...)
	}
	return sb.String(), args, nil
}

// grouped parenthesizes a nested conjunction.
type grouped struct {
	inner conjunction
}

func (g grouped) ToSql() (string, []any, error) {
	sql, args, err := g.inner.ToSql()
	if err != nil || sql == "" {
		return sql, args, err
	}
	return "(" + sql + ")", args, nil
}

func coerceSlice(vals []any) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = value.Of(v)
	}
	return out
}

func coerceValues(args []any) []value.Value {
	out := make([]value.Value, len(args))
	for i, a := range args {
		out[i] = value.Of(a)
	}
	return out
}
