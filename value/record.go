package value

import "strings"

// Record is an insertion-ordered name→Value mapping. Entities expose
// their field values through a Record instead of being introspected, so
// iteration order is stable and owned by the producer.
type Record struct {
	keys []string
	vals map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{vals: make(map[string]Value)}
}

// Set stores v under name, preserving first-insertion order. Setting an
// existing name overwrites the value without moving it. Returns the
// record for chaining.
func (r *Record) Set(name string, v any) *Record {
	if _, ok := r.vals[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.vals[name] = Of(v)
	return r
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.vals[name]
	return v, ok
}

// GetOr returns the value stored under name, or Nil when absent.
func (r *Record) GetOr(name string) Value {
	return r.vals[name]
}

// Keys returns the field names in insertion order. The returned slice
// is shared; callers must not modify it.
func (r *Record) Keys() []string { return r.keys }

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.keys) }

// Values returns the values in insertion order.
func (r *Record) Values() []Value {
	out := make([]Value, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.vals[k]
	}
	return out
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	c := NewRecord()
	for _, k := range r.keys {
		c.Set(k, r.vals[k])
	}
	return c
}

// Equal reports whether two records hold the same fields in the same
// order with equal values.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if len(r.keys) != len(o.keys) {
		return false
	}
	for i, k := range r.keys {
		if o.keys[i] != k {
			return false
		}
		if !r.vals[k].Equal(o.vals[k]) {
			return false
		}
	}
	return true
}

// String renders the record as {k1:v1, k2:v2} in insertion order.
func (r *Record) String() string {
	if r == nil {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteByte(':')
		sb.WriteString(r.vals[k].String())
	}
	sb.WriteByte('}')
	return sb.String()
}
