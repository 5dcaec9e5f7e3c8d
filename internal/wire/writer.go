package wire

import (
	"io"
	"strconv"
	"strings"
)

var escaper = strings.NewReplacer(`\`, `\\`, `,`, `\,`)

// Escape protects the separator and escape characters inside one field.
func Escape(field string) string {
	return escaper.Replace(field)
}

// Join encodes fields into a line without the trailing newline.
func Join(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Escape(f))
	}
	return b.String()
}

// Writer accumulates the fields of one outgoing message.
type Writer struct {
	fields []string
}

// NewWriter starts a message, usually with its command tag.
func NewWriter(fields ...string) *Writer {
	return &Writer{fields: append([]string(nil), fields...)}
}

// Add appends one text field.
func (w *Writer) Add(field string) *Writer {
	w.fields = append(w.fields, field)
	return w
}

// AddInt appends an integer field.
func (w *Writer) AddInt(v int64) *Writer {
	return w.Add(strconv.FormatInt(v, 10))
}

// AddRaw appends fields that were decoded earlier; they are escaped again
// on output.
func (w *Writer) AddRaw(fields []string) *Writer {
	w.fields = append(w.fields, fields...)
	return w
}

// Fields returns a copy of the accumulated fields.
func (w *Writer) Fields() []string {
	return append([]string(nil), w.fields...)
}

// Bytes returns the encoded line including its trailing newline.
func (w *Writer) Bytes() []byte {
	return []byte(Join(w.fields) + "\n")
}

// AppendTo appends the encoded line to buf and returns the extended buffer.
func (w *Writer) AppendTo(buf []byte) []byte {
	return append(buf, w.Bytes()...)
}

// SendNow writes the encoded line straight to dst.
func (w *Writer) SendNow(dst io.Writer) (int, error) {
	return dst.Write(w.Bytes())
}
