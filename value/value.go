// Package value defines the canonical tagged union for database-bindable
// values and the ordered record type entities use to expose their fields.
// Conversion to parameters and from raw row cells is total: inputs that
// cannot be represented map to Nil or best-effort Text, never to a panic.
package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindText
	KindBytes
	KindTime
	KindArray
	KindObject
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	case KindTime:
		return "time"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable tagged union over every scalar, collection, and
// nil shape the mapper can bind as a parameter or decode from a row.
// The zero Value is Nil.
type Value struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	bs   []byte
	t    time.Time
	arr  []Value
	obj  *Record
}

// Nil returns the nil Value.
func Nil() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a signed 64-bit integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Uint returns an unsigned 64-bit integer Value.
func Uint(u uint64) Value { return Value{kind: KindUint, u: u} }

// Float returns a 64-bit floating point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Text returns a text Value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Bytes returns a binary Value.
func Bytes(b []byte) Value { return Value{kind: KindBytes, bs: b} }

// Time returns a date/datetime Value.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Array returns an array Value over the given elements.
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }

// Object returns an object Value wrapping the given record.
// A nil record yields Nil.
func Object(r *Record) Value {
	if r == nil {
		return Value{}
	}
	return Value{kind: KindObject, obj: r}
}

// Of converts an arbitrary Go value into a Value. The conversion is
// total: nil maps to Nil, native scalar types map to their variant, and
// anything else is stringified into Text.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Nil()
	case Value:
		return x
	case *Value:
		if x == nil {
			return Nil()
		}
		return *x
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Uint(uint64(x))
	case uint8:
		return Uint(uint64(x))
	case uint16:
		return Uint(uint64(x))
	case uint32:
		return Uint(uint64(x))
	case uint64:
		return Uint(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case string:
		return Text(x)
	case []byte:
		return Bytes(x)
	case time.Time:
		return Time(x)
	case *time.Time:
		if x == nil {
			return Nil()
		}
		return Time(*x)
	case []Value:
		return Array(x...)
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = Of(e)
		}
		return Array(elems...)
	case *Record:
		return Object(x)
	default:
		return Text(fmt.Sprint(v))
	}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether the Value holds the Nil variant.
func (v Value) IsNil() bool { return v.kind == KindNil }

// Param converts the Value into a driver-bindable parameter. Arrays
// convert element-wise into []any so IN clauses can expand them; objects
// degrade to their string form. The conversion never fails.
func (v Value) Param() any {
	switch v.kind {
	case KindNil:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindUint:
		return v.u
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindBytes:
		return v.bs
	case KindTime:
		return v.t
	case KindArray:
		params := make([]any, len(v.arr))
		for i, e := range v.arr {
			params[i] = e.Param()
		}
		return params
	case KindObject:
		return v.String()
	default:
		return nil
	}
}

// FromCell decodes a backend's raw row cell into a Value. Unknown or
// unsupported raw types map to Text so row decoding stays resilient to
// backend quirks.
func FromCell(cell any) Value {
	switch x := cell.(type) {
	case nil:
		return Nil()
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Uint(uint64(x))
	case uint8:
		return Uint(uint64(x))
	case uint16:
		return Uint(uint64(x))
	case uint32:
		return Uint(uint64(x))
	case uint64:
		return Uint(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case string:
		return Text(x)
	case []byte:
		return Bytes(x)
	case time.Time:
		return Time(x)
	default:
		return Text(fmt.Sprint(cell))
	}
}

// Bool returns the boolean payload; false unless the kind is Bool.
func (v Value) AsBool() bool { return v.kind == KindBool && v.b }

// AsInt returns the value as int64, converting across numeric variants
// and parsing Text. Non-numeric variants yield zero.
func (v Value) AsInt() int64 {
	switch v.kind {
	case KindInt:
		return v.i
	case KindUint:
		return int64(v.u)
	case KindFloat:
		return int64(v.f)
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindText:
		n, _ := strconv.ParseInt(v.s, 10, 64)
		return n
	case KindBytes:
		n, _ := strconv.ParseInt(string(v.bs), 10, 64)
		return n
	default:
		return 0
	}
}

// AsUint returns the value as uint64 under the same rules as AsInt.
func (v Value) AsUint() uint64 {
	switch v.kind {
	case KindUint:
		return v.u
	case KindInt:
		if v.i < 0 {
			return 0
		}
		return uint64(v.i)
	default:
		return uint64(v.AsInt())
	}
}

// AsFloat returns the value as float64, converting numeric variants and
// parsing Text.
func (v Value) AsFloat() float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.i)
	case KindUint:
		return float64(v.u)
	case KindText:
		f, _ := strconv.ParseFloat(v.s, 64)
		return f
	default:
		return 0
	}
}

// AsText returns the value as a string. Equivalent to String except that
// Nil yields the empty string.
func (v Value) AsText() string {
	if v.kind == KindNil {
		return ""
	}
	return v.String()
}

// AsTime returns the time payload; the zero time unless the kind is Time.
func (v Value) AsTime() time.Time {
	if v.kind == KindTime {
		return v.t
	}
	return time.Time{}
}

// AsBytes returns the binary payload, or the UTF-8 bytes of a Text value.
func (v Value) AsBytes() []byte {
	switch v.kind {
	case KindBytes:
		return v.bs
	case KindText:
		return []byte(v.s)
	default:
		return nil
	}
}

// AsArray returns the element slice; nil unless the kind is Array.
func (v Value) AsArray() []Value {
	if v.kind == KindArray {
		return v.arr
	}
	return nil
}

// AsObject returns the record payload; nil unless the kind is Object.
func (v Value) AsObject() *Record {
	if v.kind == KindObject {
		return v.obj
	}
	return nil
}

// String renders the Value for logs and serialized id lists. Defined for
// every variant.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindUint:
		return strconv.FormatUint(v.u, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindBytes:
		return string(v.bs)
	case KindTime:
		return v.t.Format("2006-01-02 15:04:05")
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return strings.Join(parts, ",")
	case KindObject:
		return v.obj.String()
	default:
		return ""
	}
}

// Equal reports deep equality. Numeric variants compare by numeric value
// so a round trip through a backend with a different integer width still
// compares equal.
func (v Value) Equal(o Value) bool {
	if isNumeric(v.kind) && isNumeric(o.kind) {
		return numericEqual(v, o)
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.b == o.b
	case KindText:
		return v.s == o.s
	case KindBytes:
		return string(v.bs) == string(o.bs)
	case KindTime:
		return v.t.Equal(o.t)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.obj.Equal(o.obj)
	default:
		return false
	}
}

func isNumeric(k Kind) bool {
	return k == KindInt || k == KindUint || k == KindFloat
}

func numericEqual(a, b Value) bool {
	if a.kind == KindFloat || b.kind == KindFloat {
		return a.AsFloat() == b.AsFloat()
	}
	// Both integral. Compare sign first so -1 never equals MaxUint64.
	if a.kind == KindInt && a.i < 0 {
		return b.kind == KindInt && b.i == a.i
	}
	if b.kind == KindInt && b.i < 0 {
		return false
	}
	return a.AsUint() == b.AsUint()
}
