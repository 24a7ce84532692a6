package linecsv

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Encoder quotes fields for output. Every field is enclosed in quotes and
// embedded quotes are doubled, so Strict decoding reads the fields back
// unchanged as long as they contain no line terminators.
type Encoder struct {
	// Quote is the quote character. Default is '"'.
	Quote rune
}

var defaultEncoder Encoder

// EncodeField encloses field in double quotes and doubles the quotes inside it.
func EncodeField(field string) string {
	return defaultEncoder.EncodeField(field)
}

// EncodeLine encodes each field and joins them with sep.
func EncodeLine(fields []string, sep string) string {
	return defaultEncoder.EncodeLine(fields, sep)
}

// AppendField appends the encoded field to dst and returns the extended buffer.
func AppendField(dst []byte, field string) []byte {
	return defaultEncoder.AppendField(dst, field)
}

// AppendLine appends the encoded line to dst and returns the extended buffer.
func AppendLine(dst []byte, fields []string, sep string) []byte {
	return defaultEncoder.AppendLine(dst, fields, sep)
}

func (e Encoder) quote() string {
	if e.Quote == 0 || e.Quote == '"' || !utf8.ValidRune(e.Quote) {
		return `"`
	}
	return string(e.Quote)
}

// encodedLen is the size of field once quoted: the field, two enclosing
// quotes, and one extra quote per embedded quote.
func encodedLen(field, q string) int {
	return len(field) + (2+strings.Count(field, q))*len(q)
}

// EncodeField encloses field in quotes and doubles the quotes inside it.
func (e Encoder) EncodeField(field string) string {
	q := e.quote()
	var b strings.Builder
	b.Grow(encodedLen(field, q))
	writeQuoted(&b, field, q)
	return b.String()
}

// EncodeLine encodes each field and joins them with sep. No separator follows the last field.
func (e Encoder) EncodeLine(fields []string, sep string) string {
	if len(fields) == 0 {
		return ""
	}
	q := e.quote()
	size := len(sep) * (len(fields) - 1)
	for _, f := range fields {
		size += encodedLen(f, q)
	}

	var b strings.Builder
	b.Grow(size)
	for i, f := range fields {
		if i > 0 {
			b.WriteString(sep)
		}
		writeQuoted(&b, f, q)
	}
	return b.String()
}

// AppendField appends the encoded field to dst.
func (e Encoder) AppendField(dst []byte, field string) []byte {
	q := e.quote()
	dst = slices.Grow(dst, encodedLen(field, q))
	return appendQuoted(dst, field, q)
}

// AppendLine appends the encoded fields, separated by sep, to dst.
func (e Encoder) AppendLine(dst []byte, fields []string, sep string) []byte {
	if len(fields) == 0 {
		return dst
	}
	q := e.quote()
	size := len(sep) * (len(fields) - 1)
	for _, f := range fields {
		size += encodedLen(f, q)
	}
	dst = slices.Grow(dst, size)
	for i, f := range fields {
		if i > 0 {
			dst = append(dst, sep...)
		}
		dst = appendQuoted(dst, f, q)
	}
	return dst
}

func writeQuoted(b *strings.Builder, field, q string) {
	b.WriteString(q)
	for {
		i := strings.Index(field, q)
		if i < 0 {
			break
		}
		b.WriteString(field[:i+len(q)])
		b.WriteString(q)
		field = field[i+len(q):]
	}
	b.WriteString(field)
	b.WriteString(q)
}

func appendQuoted(dst []byte, field, q string) []byte {
	dst = append(dst, q...)
	for {
		i := strings.Index(field, q)
		if i < 0 {
			break
		}
		dst = append(dst, field[:i+len(q)]...)
		dst = append(dst, q...)
		field = field[i+len(q):]
	}
	dst = append(dst, field...)
	return append(dst, q...)
}
