package schema

import (
	"errors"
	"fmt"
)

// ErrUnset is returned when a slot is read before any successful write.
var ErrUnset = errors.New("schema: field not set")

// ValidationError reports a value that violates a field or record constraint.
type ValidationError struct {
	Field  string // fully qualified, e.g. "Pokemon.level"
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s (was %s)", e.Field, e.Reason, e.Value)
}

// Invalid builds a ValidationError, formatting the offending value with %v.
func Invalid(field string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:  field,
		Value:  fmt.Sprintf("%v", value),
		Reason: fmt.Sprintf(format, args...),
	}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
