package linecsv

import (
	"bufio"
	"errors"
	"io"
)

// ErrWriterClosed is returned by a nil Writer or one without a destination.
var ErrWriterClosed = errors.New("linecsv: writer has no destination")

// Writer emits records as fully quoted lines. Every field is enclosed in
// quotes, so the output decodes in Strict mode with the matching separator.
//
// The first write or flush error sticks: later calls return it until Reset.
type Writer struct {
	dst *bufio.Writer

	// Comma separates fields. It may be longer than one character. Default is ",".
	Comma string
	// Quote is the quote character. Default is '"'.
	Quote rune
	// UseCRLF writes records terminated with \r\n when set.
	UseCRLF bool

	line []byte
	err  error
}

// NewWriter returns a Writer buffering output to w. It panics if w is nil.
func NewWriter(w io.Writer) *Writer {
	out := &Writer{Comma: ",", Quote: '"'}
	out.Reset(w)
	return out
}

// Reset points w at dst and clears any sticky error. Comma, Quote and
// UseCRLF are kept. It panics if dst is nil.
func (w *Writer) Reset(dst io.Writer) {
	if dst == nil {
		panic(ErrWriterClosed.Error())
	}
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(dst, defaultBufferSize)
	} else {
		w.dst.Reset(dst)
	}
	w.err = nil
}

// usable returns the error that blocks output on w, if any.
func (w *Writer) usable() error {
	if w == nil || w.dst == nil {
		return ErrWriterClosed
	}
	return w.err
}

// fail records err as the sticky error and returns it.
func (w *Writer) fail(err error) error {
	if err != nil && w.err == nil {
		w.err = err
	}
	return err
}

func (w *Writer) terminator() string {
	if w.UseCRLF {
		return "\r\n"
	}
	return "\n"
}

// Write emits one record followed by the line terminator.
func (w *Writer) Write(record []string) error {
	if err := w.usable(); err != nil {
		return err
	}

	comma := w.Comma
	if comma == "" {
		comma = ","
	}
	w.line = Encoder{Quote: w.Quote}.AppendLine(w.line[:0], record, comma)
	w.line = append(w.line, w.terminator()...)

	_, err := w.dst.Write(w.line)
	return w.fail(err)
}

// WriteAll writes records and flushes, stopping at the first error.
func (w *Writer) WriteAll(records [][]string) error {
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes buffered records to the destination.
func (w *Writer) Flush() error {
	if err := w.usable(); err != nil {
		return err
	}
	return w.fail(w.dst.Flush())
}

// Error returns the sticky error, or ErrWriterClosed for an unusable writer.
func (w *Writer) Error() error {
	return w.usable()
}
