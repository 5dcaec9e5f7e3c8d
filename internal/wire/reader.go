package wire

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Reader hands out the fields of one decoded line, front to back.
type Reader struct {
	fields []string
	pos    int
}

// NewReader decodes a line (without its trailing newline).
//
// It returns false when the bytes are not valid UTF-8; no Reader is produced
// in that case.
func NewReader(line []byte) (*Reader, bool) {
	if !utf8.Valid(line) {
		return nil, false
	}
	return &Reader{fields: Split(string(line))}, true
}

// NewReaderFields builds a Reader over already decoded fields.
func NewReaderFields(fields ...string) *Reader {
	return &Reader{fields: append([]string(nil), fields...)}
}

// Split decodes a line into its unescaped fields. An escape character
// at the very end of the line is dropped.
func Split(line string) []string {
	var (
		fields []string
		field  strings.Builder
		escape bool
	)
	for _, c := range line {
		switch {
		case c == ',' && !escape:
			fields = append(fields, field.String())
			field.Reset()
		case c == '\\' && !escape:
			escape = true
		default:
			field.WriteRune(c)
			escape = false
		}
	}
	return append(fields, field.String())
}

// Len returns how many fields are left.
func (r *Reader) Len() int {
	return len(r.fields) - r.pos
}

// Consume pops the next raw field.
func (r *Reader) Consume() (string, error) {
	if r.pos >= len(r.fields) {
		return "", ErrExhausted
	}
	f := r.fields[r.pos]
	r.pos++
	return f, nil
}

// ConsumeInt pops the next field as a base 10 integer.
func (r *Reader) ConsumeInt() (int64, error) {
	raw, err := r.Consume()
	if err != nil {
		return 0, err
	}
	return parseInt(raw)
}

// ConsumeBool pops the next field as a boolean. Only the literals "true" and
// "false" are accepted.
func (r *Reader) ConsumeBool() (bool, error) {
	raw, err := r.Consume()
	if err != nil {
		return false, err
	}
	return parseBool(raw)
}

// ConsumeOptionalInt pops the next field. An empty field means absence and
// reports ok=false.
func (r *Reader) ConsumeOptionalInt() (v int64, ok bool, err error) {
	raw, err := r.Consume()
	if err != nil || raw == "" {
		return 0, false, err
	}
	v, err = parseInt(raw)
	return v, err == nil, err
}

// ConsumeOptionalBool is ConsumeOptionalInt for booleans.
func (r *Reader) ConsumeOptionalBool() (v bool, ok bool, err error) {
	raw, err := r.Consume()
	if err != nil || raw == "" {
		return false, false, err
	}
	v, err = parseBool(raw)
	return v, err == nil, err
}

// ConsumeOptionalString pops the next field, reporting ok=false when it is
// empty.
func (r *Reader) ConsumeOptionalString() (string, bool, error) {
	raw, err := r.Consume()
	if err != nil {
		return "", false, err
	}
	return raw, raw != "", nil
}

// Remaining returns a copy of the fields not consumed yet, without
// consuming them.
func (r *Reader) Remaining() []string {
	return append([]string(nil), r.fields[r.pos:]...)
}

func parseInt(raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &ConversionError{Kind: "int", Raw: raw, Err: err}
	}
	return v, nil
}

func parseBool(raw string) (bool, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &ConversionError{Kind: "bool", Raw: raw}
}
