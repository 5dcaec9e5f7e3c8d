package wire

import (
	"errors"
	"fmt"
)

// ErrExhausted is returned when a Reader is asked for a field after the last
// one has been consumed.
var ErrExhausted = errors.New("wire: input exhausted")

// ErrUnreadable marks bytes that are not valid UTF-8 text. Callers drop the
// connection without replying.
var ErrUnreadable = errors.New("wire: unreadable message")

// ConversionError reports a field that could not be converted to the
// requested type.
type ConversionError struct {
	Kind string // "int" or "bool"
	Raw  string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %s", e.Raw, e.Kind)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
