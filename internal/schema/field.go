package schema

import (
	"strconv"
	"unicode/utf8"
)

// Unbounded disables the length limit of a Str field.
const Unbounded = -1

// Field is a named, constrained descriptor for one slot of a record.
// Fields are built once from configuration and shared read-only by every
// parse.
type Field[T any] struct {
	name  string
	check func(name string, v T) error
}

// Name returns the fully qualified field name.
func (f *Field[T]) Name() string {
	return f.name
}

// Validate runs the field's constraint without storing anything.
func (f *Field[T]) Validate(v T) error {
	if f.check == nil {
		return nil
	}
	return f.check(f.name, v)
}

// Store validates v and, only when it passes, writes it to dst.
func (f *Field[T]) Store(dst *Slot[T], v T) error {
	if err := f.Validate(v); err != nil {
		return err
	}
	dst.value = v
	dst.set = true
	return nil
}

// Plain is an unconstrained field.
func Plain[T any](name string) *Field[T] {
	return &Field[T]{name: name}
}

// IntOption constrains an Int field.
type IntOption func(*intRange)

type intRange struct {
	min, max       int64
	hasMin, hasMax bool
}

// Min sets an inclusive lower bound.
func Min(n int64) IntOption {
	return func(r *intRange) { r.min, r.hasMin = n, true }
}

// Max sets an inclusive upper bound.
func Max(n int64) IntOption {
	return func(r *intRange) { r.max, r.hasMax = n, true }
}

func (r intRange) check(name string, v int64) error {
	if r.hasMin && v < r.min {
		return Invalid(name, v, "has to be >= %d", r.min)
	}
	if r.hasMax && v > r.max {
		return Invalid(name, v, "has to be <= %d", r.max)
	}
	return nil
}

func newRange(opts []IntOption) intRange {
	var r intRange
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Int is an integer field bounded by the given options.
func Int(name string, opts ...IntOption) *Field[int64] {
	return &Field[int64]{name: name, check: newRange(opts).check}
}

// OptionalInt is Int that also accepts absence.
func OptionalInt(name string, opts ...IntOption) *Field[Optional[int64]] {
	r := newRange(opts)
	return &Field[Optional[int64]]{name: name, check: func(name string, v Optional[int64]) error {
		if !v.Valid {
			return nil
		}
		return r.check(name, v.Value)
	}}
}

// OneOf only accepts members of set.
func OneOf[T comparable](name string, set Set[T]) *Field[T] {
	return &Field[T]{name: name, check: func(name string, v T) error {
		if set.Contains(v) {
			return nil
		}
		return Invalid(name, quote(v), "has to be one of: %s", set)
	}}
}

// OptionalOneOf is OneOf that also accepts absence.
func OptionalOneOf[T comparable](name string, set Set[T]) *Field[Optional[T]] {
	inner := OneOf(name, set)
	return &Field[Optional[T]]{name: name, check: func(_ string, v Optional[T]) error {
		if !v.Valid {
			return nil
		}
		return inner.Validate(v.Value)
	}}
}

// Str is a text field of at most maxLen characters.
func Str(name string, maxLen int) *Field[string] {
	return &Field[string]{name: name, check: func(name string, v string) error {
		if maxLen == Unbounded {
			return nil
		}
		if n := utf8.RuneCountInString(v); n > maxLen {
			return &ValidationError{
				Field:  "len(" + name + ")",
				Value:  strconv.Itoa(n),
				Reason: "has to be <= " + strconv.Itoa(maxLen),
			}
		}
		return nil
	}}
}

// Bool is an unconstrained boolean field.
func Bool(name string) *Field[bool] {
	return Plain[bool](name)
}

// OptionalBool is a boolean that may be absent.
func OptionalBool(name string) *Field[Optional[bool]] {
	return Plain[Optional[bool]](name)
}

func quote(v any) any {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	return v
}
