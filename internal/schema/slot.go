package schema

import "fmt"

// Slot is the storage for one named field of a record. The zero Slot is
// unset.
type Slot[T any] struct {
	value T
	set   bool
}

// IsSet reports whether a value has been stored.
func (s Slot[T]) IsSet() bool {
	return s.set
}

// Get returns the stored value or ErrUnset.
func (s Slot[T]) Get() (T, error) {
	if !s.set {
		var zero T
		return zero, ErrUnset
	}
	return s.value, nil
}

// Must returns the stored value and panics when the slot is unset. Use it
// only on records that came out of a successful parse.
func (s Slot[T]) Must() T {
	if !s.set {
		panic(ErrUnset)
	}
	return s.value
}

// Or returns the stored value, or def when unset.
func (s Slot[T]) Or(def T) T {
	if !s.set {
		return def
	}
	return s.value
}

func (s Slot[T]) String() string {
	if !s.set {
		return "NOTSET"
	}
	return fmt.Sprintf("%v", s.value)
}

// Optional is a value that may be absent on the wire (an empty field).
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// None is the absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) String() string {
	if !o.Valid {
		return "None"
	}
	return fmt.Sprintf("%v", o.Value)
}
