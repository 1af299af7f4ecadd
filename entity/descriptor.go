// Package entity consumes the statically produced metadata that maps an
// entity type onto a table: the column list, the identifier field, and
// per-field fill rules. Descriptors are immutable and live for the whole
// process; this package never introspects entity instances — field values
// flow exclusively through value.Record.
package entity

import (
	"fmt"

	"github.com/vireo-db/vireo/types"
	"github.com/vireo-db/vireo/value"
)

// Kind distinguishes the identifier column from plain columns.
type Kind uint8

const (
	// Plain is an ordinary data column.
	Plain Kind = iota
	// Identifier is the entity's primary lookup key.
	Identifier
)

// Field describes one physical column of an entity table.
type Field struct {
	// Name is the physical column name.
	Name string
	// Exists reports whether the field participates in generated SQL.
	Exists bool
	// Kind is Identifier or Plain.
	Kind Kind
	// Fill optionally overrides the bound value on insert/update.
	Fill *Fill
}

// Column returns a Field that exists and carries kind Plain.
func Column(name string) Field {
	return Field{Name: name, Exists: true, Kind: Plain}
}

// ID returns the identifier Field for the given column.
func ID(name string) Field {
	return Field{Name: name, Exists: true, Kind: Identifier}
}

// Ignored returns a Field excluded from generated SQL.
func Ignored(name string) Field {
	return Field{Name: name, Exists: false, Kind: Plain}
}

// WithFill returns a copy of the field carrying the given fill rule.
func (f Field) WithFill(fill *Fill) Field {
	f.Fill = fill
	return f
}

// Descriptor is the static per-entity-type metadata: a schema-qualified
// table name and an ordered field list. At most one field may carry the
// Identifier kind.
type Descriptor struct {
	table  string
	fields []Field
}

// NewDescriptor builds a Descriptor. It fails when more than one field
// is declared as identifier; a descriptor with zero identifiers is valid
// but rejects by-id operations at call time.
func NewDescriptor(table string, fields ...Field) (*Descriptor, error) {
	ids := 0
	for _, f := range fields {
		if f.Kind == Identifier {
			ids++
		}
	}
	if ids > 1 {
		return nil, fmt.Errorf("%w: table %q declares %d identifier fields", types.ErrData, table, ids)
	}
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return &Descriptor{table: table, fields: fs}, nil
}

// MustDescriptor is like NewDescriptor but panics on error. Intended for
// package-level descriptor variables produced by generated code.
func MustDescriptor(table string, fields ...Field) *Descriptor {
	d, err := NewDescriptor(table, fields...)
	if err != nil {
		panic(err)
	}
	return d
}

// TableName returns the schema-qualified table name.
func (d *Descriptor) TableName() string { return d.table }

// Fields returns the ordered field list. The slice is shared; callers
// must not modify it.
func (d *Descriptor) Fields() []Field { return d.fields }

// ExistingFields returns the fields that participate in generated SQL,
// in declaration order.
func (d *Descriptor) ExistingFields() []Field {
	out := make([]Field, 0, len(d.fields))
	for _, f := range d.fields {
		if f.Exists {
			out = append(out, f)
		}
	}
	return out
}

// PlainFields returns the existing fields that are not the identifier.
func (d *Descriptor) PlainFields() []Field {
	out := make([]Field, 0, len(d.fields))
	for _, f := range d.fields {
		if f.Exists && f.Kind == Plain {
			out = append(out, f)
		}
	}
	return out
}

// IdentifierField resolves the identifier column. It returns a typed
// error, never panics, so by-id operations can fail before any SQL is
// built.
func (d *Descriptor) IdentifierField() (Field, error) {
	for _, f := range d.fields {
		if f.Kind == Identifier {
			return f, nil
		}
	}
	return Field{}, fmt.Errorf("%w: table %q", types.ErrMissingIdentifier, d.table)
}

// Persistable is the capability an entity type offers for write paths:
// its table binding and an ordered snapshot of its field values.
type Persistable interface {
	TableName() string
	ToRecord() *value.Record
}

// Loadable is the capability for read paths: hydrating an instance from
// a decoded row record.
type Loadable interface {
	FromRecord(rec *value.Record) error
}
