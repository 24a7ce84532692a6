package linecsv

import (
	"strings"
	"unicode/utf8"
)

// FieldBuffer accumulates the characters of the field currently being decoded.
// The decoder only appends to it, asks whether it is empty, and flushes it once
// per completed field, so any character sequence type can back a decode.
type FieldBuffer[F any] interface {
	// AppendRune appends a single character.
	AppendRune(r rune)
	// AppendRepeated appends r n times. n may be zero.
	AppendRepeated(r rune, n int)
	// AppendByte appends one byte of input that is not valid UTF-8.
	AppendByte(c byte)
	// IsEmpty reports whether nothing has been appended since the last Flush.
	IsEmpty() bool
	// Flush returns the accumulated field and resets the buffer.
	// The returned value must not alias storage the buffer reuses.
	Flush() F
}

// Sink receives completed fields in order.
type Sink[F any] interface {
	Add(field F)
}

// Fields is an append-only Sink collecting fields into a slice.
type Fields[F any] []F

// Add appends field to the collection.
func (s *Fields[F]) Add(field F) {
	*s = append(*s, field)
}

// SinkFunc adapts a callback to the Sink interface. It is invoked once per completed field.
type SinkFunc[F any] func(field F)

// Add calls f(field).
func (f SinkFunc[F]) Add(field F) {
	f(field)
}

// StringBuffer is a FieldBuffer producing string fields.
type StringBuffer struct {
	b strings.Builder
}

func (s *StringBuffer) AppendRune(r rune) {
	s.b.WriteRune(r)
}

func (s *StringBuffer) AppendRepeated(r rune, n int) {
	if n <= 0 {
		return
	}
	if r < utf8.RuneSelf {
		s.b.Grow(n)
		for i := 0; i < n; i++ {
			s.b.WriteByte(byte(r))
		}
		return
	}
	s.b.WriteString(strings.Repeat(string(r), n))
}

func (s *StringBuffer) AppendByte(c byte) {
	s.b.WriteByte(c)
}

func (s *StringBuffer) IsEmpty() bool {
	return s.b.Len() == 0
}

// Flush returns the field and starts a fresh builder; strings.Builder.Reset
// drops the backing array so returned strings never share memory.
func (s *StringBuffer) Flush() string {
	out := s.b.String()
	s.b.Reset()
	return out
}

// BytesBuffer is a FieldBuffer producing []byte fields. Each flushed field owns its backing array.
type BytesBuffer struct {
	buf []byte
}

func (b *BytesBuffer) AppendRune(r rune) {
	b.buf = utf8.AppendRune(b.buf, r)
}

func (b *BytesBuffer) AppendRepeated(r rune, n int) {
	for i := 0; i < n; i++ {
		b.buf = utf8.AppendRune(b.buf, r)
	}
}

func (b *BytesBuffer) AppendByte(c byte) {
	b.buf = append(b.buf, c)
}

func (b *BytesBuffer) IsEmpty() bool {
	return len(b.buf) == 0
}

func (b *BytesBuffer) Flush() []byte {
	out := b.buf
	b.buf = nil
	if out == nil {
		out = []byte{}
	}
	return out
}

// RuneBuffer is a FieldBuffer producing []rune fields. A rune slice cannot
// hold invalid UTF-8, so each such input byte becomes utf8.RuneError.
type RuneBuffer struct {
	buf []rune
}

func (b *RuneBuffer) AppendRune(r rune) {
	b.buf = append(b.buf, r)
}

func (b *RuneBuffer) AppendRepeated(r rune, n int) {
	for i := 0; i < n; i++ {
		b.buf = append(b.buf, r)
	}
}

func (b *RuneBuffer) AppendByte(byte) {
	b.buf = append(b.buf, utf8.RuneError)
}

func (b *RuneBuffer) IsEmpty() bool {
	return len(b.buf) == 0
}

func (b *RuneBuffer) Flush() []rune {
	out := b.buf
	b.buf = nil
	if out == nil {
		out = []rune{}
	}
	return out
}
