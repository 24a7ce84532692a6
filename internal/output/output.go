// Package output serializes decoded records for the linecsv command.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/oleg578/linecsv"
)

// ErrUnknownFormat is returned for formats other than json, msgpack and csv.
var ErrUnknownFormat = errors.New("unknown output format")

// Options configures a RecordWriter.
type Options struct {
	// Format is json, msgpack or csv.
	Format string
	// Separator joins fields in csv output.
	Separator string
	// Quote is the quote used in csv output.
	Quote rune
	// CRLF terminates csv lines with \r\n.
	CRLF bool
	// Compress wraps the stream in an LZ4 frame.
	Compress bool
}

// RecordWriter writes records in one serialization format. Close flushes
// buffered data and ends any compression frame; it does not close the
// underlying writer.
type RecordWriter interface {
	WriteRecord(record []string) error
	Close() error
}

// New returns a RecordWriter emitting to w.
func New(w io.Writer, opts Options) (RecordWriter, error) {
	var zw *lz4.Writer
	if opts.Compress {
		zw = lz4.NewWriter(w)
		w = zw
	}

	var rw RecordWriter
	switch opts.Format {
	case "json":
		rw = &jsonWriter{enc: json.NewEncoder(w)}
	case "msgpack":
		rw = &msgpackWriter{enc: msgpack.NewEncoder(w)}
	case "csv":
		cw := linecsv.NewWriter(w)
		if opts.Separator != "" {
			cw.Comma = opts.Separator
		}
		if opts.Quote != 0 {
			cw.Quote = opts.Quote
		}
		cw.UseCRLF = opts.CRLF
		rw = &csvWriter{w: cw}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}

	if zw != nil {
		return &compressed{RecordWriter: rw, zw: zw}, nil
	}
	return rw, nil
}

type jsonWriter struct {
	enc *json.Encoder
}

func (j *jsonWriter) WriteRecord(record []string) error {
	if record == nil {
		record = []string{}
	}
	return j.enc.Encode(record)
}

func (j *jsonWriter) Close() error { return nil }

type msgpackWriter struct {
	enc *msgpack.Encoder
}

func (m *msgpackWriter) WriteRecord(record []string) error {
	return m.enc.Encode(record)
}

func (m *msgpackWriter) Close() error { return nil }

type csvWriter struct {
	w *linecsv.Writer
}

func (c *csvWriter) WriteRecord(record []string) error {
	return c.w.Write(record)
}

func (c *csvWriter) Close() error {
	return c.w.Flush()
}

type compressed struct {
	RecordWriter
	zw *lz4.Writer
}

func (c *compressed) Close() error {
	if err := c.RecordWriter.Close(); err != nil {
		c.zw.Close()
		return err
	}
	return c.zw.Close()
}
