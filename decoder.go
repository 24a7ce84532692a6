package linecsv

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnexpectedQuote is returned in Strict mode when a quote appears after an unquoted field has started.
	ErrUnexpectedQuote = errors.New("linecsv: unexpected quote in unquoted field")
	// ErrInvalidSeparator is returned in Strict mode when a closing quote is followed by something
	// other than the separator or the end of the line.
	ErrInvalidSeparator = errors.New("linecsv: invalid separator after quoted field")
	// ErrNewlineOutsideQuote is returned in Strict mode when a line terminator appears outside quotes.
	ErrNewlineOutsideQuote = errors.New("linecsv: newline outside quoted field")
	// ErrUnterminatedQuote is returned when a quoted field is still open at the end of input and the
	// caller asked for closed quotes.
	ErrUnterminatedQuote = errors.New("linecsv: unterminated quoted field")
	// ErrInvalidDelimiter is returned when the separator or quote cannot be used.
	ErrInvalidDelimiter = errors.New("linecsv: invalid field delimiter")
	// ErrFieldCount is returned by Reader when a record has an unexpected number of fields.
	ErrFieldCount = errors.New("linecsv: wrong number of fields")
)

// ParseError contains location information for decoding errors.
// Column is the 1-based byte offset of the offending character. Line is zero for
// single-line decodes and set by Reader.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

// Error formats the parse error message with the stored location and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("linecsv: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("linecsv: parse error at column %d: %v", e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Is.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Mode selects which quoting anomalies are errors and which pass through literally.
type Mode uint8

const (
	// Strict rejects stray quotes, garbage after a closing quote and bare line terminators.
	Strict Mode = iota
	// Loose keeps every anomalous character as literal field content.
	Loose
)

// String returns the lower-case name of the mode.
func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Loose:
		return "loose"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// ParseMode converts "strict" or "loose" (any case) into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return Strict, nil
	case "loose":
		return Loose, nil
	default:
		return Strict, fmt.Errorf("linecsv: unknown mode %q", s)
	}
}

// Decoder splits single lines into fields. The zero value decodes
// comma-separated lines in Strict mode. A Decoder is safe for concurrent use.
type Decoder struct {
	// Comma is the field separator. Default is ','.
	Comma rune
	// Quote is the quote character. Default is '"'.
	Quote rune
	// Mode selects Strict or Loose anomaly handling.
	Mode Mode
	// RequireClosedQuote makes a quoted field left open at the end of the line
	// an ErrUnterminatedQuote error instead of being flushed as is.
	RequireClosedQuote bool
}

// Decode splits line on sep using the given mode.
func Decode(line string, sep rune, mode Mode) ([]string, error) {
	d := Decoder{Comma: sep, Mode: mode}
	return d.Decode(line)
}

// DecodeBytes is like Decode for byte input, returning byte fields. Bytes that
// are not valid UTF-8 are copied into the fields unchanged.
func DecodeBytes(line []byte, sep rune, mode Mode) ([][]byte, error) {
	d := Decoder{Comma: sep, Mode: mode}
	return d.DecodeBytes(line)
}

// Decode splits line into fields. On error no fields are returned.
func (d *Decoder) Decode(line string) ([]string, error) {
	out := make(Fields[string], 0, strings.Count(line, string(d.comma()))+1)
	if err := DecodeTo[string](d, line, &StringBuffer{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeBytes splits line into byte fields. Every field owns its memory.
func (d *Decoder) DecodeBytes(line []byte) ([][]byte, error) {
	var out Fields[[]byte]
	if err := DecodeTo[[]byte](d, string(line), &BytesBuffer{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeTo scans line and pushes each completed field to sink, using buf to
// accumulate characters. A nil d decodes with the zero Decoder settings.
//
// Fields are pushed as soon as they complete, so a call that fails may already
// have pushed some of them; callers needing all-or-nothing results should
// collect into a Fields value and discard it on error, as Decode does.
func DecodeTo[F any](d *Decoder, line string, buf FieldBuffer[F], sink Sink[F]) error {
	if d == nil {
		d = &Decoder{}
	}
	if err := d.validate(); err != nil {
		return err
	}
	open, err := decodeLine(d, line, buf, sink)
	if err != nil {
		return err
	}
	if open && d.RequireClosedQuote {
		return &ParseError{Column: len(line) + 1, Err: ErrUnterminatedQuote}
	}
	return nil
}

func (d *Decoder) comma() rune {
	if d.Comma == 0 {
		return ','
	}
	return d.Comma
}

func (d *Decoder) quote() rune {
	if d.Quote == 0 {
		return '"'
	}
	return d.Quote
}

func (d *Decoder) validate() error {
	comma, quote := d.comma(), d.quote()
	if !validDelim(comma) || !validDelim(quote) || comma == quote {
		return ErrInvalidDelimiter
	}
	return nil
}

func validDelim(r rune) bool {
	return r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r'
}

// decodeLine runs the quote-run state machine over line and reports whether
// the line ended inside a quoted field. The trailing field is always flushed.
func decodeLine[F any](d *Decoder, line string, buf FieldBuffer[F], sink Sink[F]) (bool, error) {
	s := newScanner(d, buf, sink)
	if err := s.feed(line); err != nil {
		return s.inQuotes, err
	}
	s.finish()
	return s.inQuotes, nil
}

// scanner holds the decode state between calls to feed, so a record whose
// quoted field spans several physical lines is scanned once, piece by piece.
// Feeding more text is only valid while inQuotes is set: the end of a piece
// is then never the end of a quote run that still needs lookahead.
type scanner[F any] struct {
	mode         Mode
	comma, quote rune
	buf          FieldBuffer[F]
	sink         Sink[F]
	inQuotes     bool
}

func newScanner[F any](d *Decoder, buf FieldBuffer[F], sink Sink[F]) *scanner[F] {
	return &scanner[F]{
		mode:  d.Mode,
		comma: d.comma(),
		quote: d.quote(),
		buf:   buf,
		sink:  sink,
	}
}

// feed scans text, pushing each field completed by an unquoted separator.
// Error columns are 1-based byte offsets into text.
func (s *scanner[F]) feed(text string) error {
	buf := s.buf
	for i := 0; i < len(text); {
		c, w := utf8.DecodeRuneInString(text[i:])

		switch {
		case c == utf8.RuneError && w == 1:
			buf.AppendByte(text[i])
			i++

		case c == s.quote:
			if !s.inQuotes && !buf.IsEmpty() {
				// Quote in the middle of an unquoted field.
				if s.mode == Strict {
					return &ParseError{Column: i + 1, Err: ErrUnexpectedQuote}
				}
				buf.AppendRune(c)
				i += w
				continue
			}

			n := quoteRun(text[i:], s.quote)
			next := i + n*w
			wasInQuotes := s.inQuotes

			var literal int
			switch {
			case n%2 == 1:
				s.inQuotes = !s.inQuotes
				literal = (n - 1) / 2
			case buf.IsEmpty():
				// The first pair is the open and close of a field that starts here.
				literal = (n - 2) / 2
			default:
				literal = n / 2
			}

			if !s.inQuotes && !atFieldEnd(text, next, s.comma) {
				if s.mode == Strict {
					return &ParseError{Column: next + 1, Err: ErrInvalidSeparator}
				}
				s.inQuotes = wasInQuotes
				literal = n
			}
			buf.AppendRepeated(s.quote, literal)
			i = next

		case c == s.comma && !s.inQuotes:
			s.sink.Add(buf.Flush())
			i += w

		case isLineTerminator(c) && !s.inQuotes:
			if s.mode == Strict {
				return &ParseError{Column: i + 1, Err: ErrNewlineOutsideQuote}
			}
			buf.AppendRune(c)
			i += w

		default:
			buf.AppendRune(c)
			i += w
		}
	}
	return nil
}

// finish pushes the trailing field.
func (s *scanner[F]) finish() {
	s.sink.Add(s.buf.Flush())
}

// quoteRun counts consecutive quote characters at the start of s.
func quoteRun(s string, quote rune) int {
	n := 0
	if quote < utf8.RuneSelf {
		for n < len(s) && s[n] == byte(quote) {
			n++
		}
		return n
	}
	for len(s) > 0 {
		r, w := utf8.DecodeRuneInString(s)
		if r != quote {
			break
		}
		n++
		s = s[w:]
	}
	return n
}

// atFieldEnd reports whether pos is the end of line or the start of a separator.
func atFieldEnd(line string, pos int, comma rune) bool {
	if pos >= len(line) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(line[pos:])
	return r == comma
}
