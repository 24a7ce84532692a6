package linecsv

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const defaultBufferSize = 1 << 10 // 1024 bytes

// Reader reads records from line-oriented CSV input. Each physical line is one
// record, except that a line ending inside an open quoted field is joined with
// the following line, terminator included, before it is decoded.
type Reader struct {
	src *bufio.Reader

	// Comma is the field delimiter. Default is ','.
	Comma rune
	// Quote is the quote character. Default is '"'.
	Quote rune
	// Mode selects Strict or Loose decoding.
	Mode Mode
	// RequireClosedQuote makes a quoted field still open at EOF an
	// ErrUnterminatedQuote error. By default it is returned as is.
	RequireClosedQuote bool
	// ReuseRecord indicates whether Read should reuse the backing array of the returned slice.
	ReuseRecord bool
	// FieldsPerRecord expects each record to contain this many fields. Zero captures the
	// width of the first record; a negative value disables the check.
	FieldsPerRecord int
	// SkipEmptyLines drops physical lines with no characters instead of returning a
	// record holding one empty field.
	SkipEmptyLines bool

	record   []string
	finished bool
	line     int
}

// NewReader creates a Reader that consumes CSV data from r, panicking if r is nil.
func NewReader(r io.Reader) *Reader {
	if r == nil {
		panic("linecsv: reader source cannot be nil")
	}

	return &Reader{
		src:    bufio.NewReaderSize(r, defaultBufferSize),
		Comma:  ',',
		Quote:  '"',
		record: make([]string, 0, 16),
	}
}

// Line returns the number of physical lines consumed so far.
func (r *Reader) Line() int {
	if r == nil {
		return 0
	}
	return r.line
}

// Read decodes the next record. io.EOF signals that no more records remain.
// Decoding failures are returned as *ParseError with Line and Column relative
// to the physical input.
func (r *Reader) Read() (dst []string, err error) {
	if r == nil || r.src == nil || r.finished {
		return nil, io.EOF
	}

	d := Decoder{Comma: r.Comma, Quote: r.Quote, Mode: r.Mode}
	if err := d.validate(); err != nil {
		return nil, err
	}

	text, term, err := r.readLine()
	for err == nil && r.SkipEmptyLines && text == "" {
		text, term, err = r.readLine()
	}
	if err != nil {
		if err == io.EOF {
			r.finished = true
		}
		return nil, err
	}
	startLine := r.line

	var fields Fields[string]
	if r.ReuseRecord {
		fields = r.record[:0]
	}

	// A joined line resumes the scan where the previous one stopped; the
	// terminator between them is content of the open quoted field.
	s := newScanner[string](&d, &StringBuffer{}, &fields)
	if err := s.feed(text); err != nil {
		return nil, r.atLine(err)
	}
	for s.inQuotes {
		more, moreTerm, err := r.readLine()
		if err == io.EOF {
			r.finished = true
			if r.RequireClosedQuote {
				return nil, &ParseError{Line: r.line, Column: len(text) + 1, Err: ErrUnterminatedQuote}
			}
			break
		}
		if err != nil {
			return nil, err
		}
		if err := s.feed(term); err != nil {
			return nil, r.atLine(err)
		}
		if err := s.feed(more); err != nil {
			return nil, r.atLine(err)
		}
		text, term = more, moreTerm
	}
	s.finish()

	if r.ReuseRecord {
		r.record = fields
	}
	return r.checkFieldCount(fields, startLine)
}

// ReadAll exhausts the reader, repeatedly calling Read to collect records until io.EOF
// and returning the accumulated records slice plus the first non-EOF error encountered.
func (r *Reader) ReadAll() (records [][]string, err error) {
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		if r.ReuseRecord {
			record = append([]string(nil), record...)
		}
		records = append(records, record)
	}
}

func (r *Reader) checkFieldCount(record []string, line int) ([]string, error) {
	if r.FieldsPerRecord < 0 {
		return record, nil
	}
	if r.FieldsPerRecord == 0 {
		r.FieldsPerRecord = len(record)
		return record, nil
	}
	if len(record) != r.FieldsPerRecord {
		return record, &ParseError{Line: line, Column: 1, Err: ErrFieldCount}
	}
	return record, nil
}

// readLine returns the next physical line without its terminator, and the
// terminator itself ("\n", "\r\n" or "" at EOF).
func (r *Reader) readLine() (text, term string, err error) {
	s, err := r.src.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", "", err
	}
	if err == io.EOF && s == "" {
		return "", "", io.EOF
	}
	r.line++

	switch {
	case strings.HasSuffix(s, "\r\n"):
		return s[:len(s)-2], "\r\n", nil
	case strings.HasSuffix(s, "\n"):
		return s[:len(s)-1], "\n", nil
	default:
		return s, "", nil
	}
}

// atLine stamps a decode error with the physical line being scanned.
func (r *Reader) atLine(err error) error {
	var perr *ParseError
	if errors.As(err, &perr) {
		perr.Line = r.line
	}
	return err
}
