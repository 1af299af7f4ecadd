package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/vireo-db/vireo/value"
)

// Trigger selects the operations a fill rule applies to.
type Trigger uint8

const (
	// TriggerInsert applies the fill on insert paths only.
	TriggerInsert Trigger = iota
	// TriggerUpdate applies the fill on update paths only.
	TriggerUpdate
	// TriggerAlways applies the fill on both.
	TriggerAlways
)

// Fill overrides a field's bound value whenever the current operation
// matches the trigger, regardless of the entity instance's own value.
// Func takes precedence over Value when both are set.
type Fill struct {
	Trigger Trigger
	Value   *value.Value
	Func    func() value.Value
}

// FillValue returns a fill rule bound to a static value.
func FillValue(t Trigger, v any) *Fill {
	val := value.Of(v)
	return &Fill{Trigger: t, Value: &val}
}

// FillFunc returns a fill rule bound to a named source function.
func FillFunc(t Trigger, fn func() value.Value) *Fill {
	return &Fill{Trigger: t, Func: fn}
}

// Applies reports whether the rule fires for the given operation trigger.
func (f *Fill) Applies(t Trigger) bool {
	if f == nil {
		return false
	}
	return f.Trigger == TriggerAlways || f.Trigger == t
}

// Resolve produces the override value. A rule with neither a function
// nor a static value resolves to Nil.
func (f *Fill) Resolve() value.Value {
	if f == nil {
		return value.Nil()
	}
	if f.Func != nil {
		return f.Func()
	}
	if f.Value != nil {
		return *f.Value
	}
	return value.Nil()
}

// FillNow is a fill source producing the current timestamp. Useful for
// created_at/updated_at columns.
func FillNow() value.Value {
	return value.Time(time.Now())
}

// FillUUID is a fill source producing a random UUID string.
func FillUUID() value.Value {
	return value.Text(uuid.NewString())
}
