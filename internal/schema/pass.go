package schema

import (
	"errors"
	"fmt"

	"github.com/roach88/cableclub/internal/wire"
)

// Decoder converts the next wire field(s) into a Go value.
type Decoder[T any] func(r *wire.Reader) (T, error)

// Decoders for the wire's basic field kinds.
var (
	Text    Decoder[string] = (*wire.Reader).Consume
	Integer Decoder[int64]  = (*wire.Reader).ConsumeInt
	Boolean Decoder[bool]   = (*wire.Reader).ConsumeBool

	OptInteger Decoder[Optional[int64]] = func(r *wire.Reader) (Optional[int64], error) {
		v, ok, err := r.ConsumeOptionalInt()
		return Optional[int64]{Value: v, Valid: ok}, err
	}
	OptBoolean Decoder[Optional[bool]] = func(r *wire.Reader) (Optional[bool], error) {
		v, ok, err := r.ConsumeOptionalBool()
		return Optional[bool]{Value: v, Valid: ok}, err
	}
	OptText Decoder[Optional[string]] = func(r *wire.Reader) (Optional[string], error) {
		v, ok, err := r.ConsumeOptionalString()
		return Optional[string]{Value: v, Valid: ok}, err
	}
)

// Pass is one ordered, token-consuming read over a Reader. The first error
// sticks: every later read becomes a no-op and Err reports it.
type Pass struct {
	r   *wire.Reader
	err error
}

// NewPass starts a pass over r.
func NewPass(r *wire.Reader) *Pass {
	return &Pass{r: r}
}

// Err returns the first error recorded by the pass.
func (p *Pass) Err() error {
	return p.err
}

// Ok reports whether no error was recorded yet.
func (p *Pass) Ok() bool {
	return p.err == nil
}

// Fail records err unless an earlier error is already stored.
func (p *Pass) Fail(err error) {
	if p.err == nil && err != nil {
		p.err = err
	}
}

// Reader exposes the underlying reader.
func (p *Pass) Reader() *wire.Reader {
	return p.r
}

// Read decodes the next value with dec and stores it in dst through f.
func Read[T any](p *Pass, f *Field[T], dst *Slot[T], dec Decoder[T]) {
	if p.err != nil {
		return
	}
	v, err := dec(p.r)
	if err != nil {
		p.err = fieldError(f.name, err)
		return
	}
	p.err = f.Store(dst, v)
}

// Value decodes the next value with dec and validates it through f without
// a slot, for list elements and other transient values.
func Value[T any](p *Pass, f *Field[T], dec Decoder[T]) T {
	var zero T
	if p.err != nil {
		return zero
	}
	v, err := dec(p.r)
	if err != nil {
		p.err = fieldError(f.name, err)
		return zero
	}
	if err := f.Validate(v); err != nil {
		p.err = err
		return zero
	}
	return v
}

// Count reads a list length. Negative lengths are rejected.
func Count(p *Pass, name string) int {
	n := Value(p, countField(name), Integer)
	// Every element takes at least one field.
	if p.err == nil && n > int64(p.r.Len()) {
		p.err = fmt.Errorf("%s: %w", name, wire.ErrExhausted)
		return 0
	}
	return int(n)
}

func countField(name string) *Field[int64] {
	return Int(name, Min(0))
}

// fieldError attaches the field name to decoding failures. Conversion
// failures become validation errors; exhaustion is passed through.
func fieldError(name string, err error) error {
	var ce *wire.ConversionError
	if errors.As(err, &ce) {
		return &ValidationError{Field: name, Value: fmt.Sprintf("%q", ce.Raw), Reason: "is not a valid " + ce.Kind}
	}
	return fmt.Errorf("%s: %w", name, err)
}
