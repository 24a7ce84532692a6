// Package input opens the byte streams and record streams consumed by the
// linecsv command.
package input

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Stdin is the file name that selects standard input.
const Stdin = "-"

// ErrUnknownFormat is returned for record formats other than json and msgpack.
var ErrUnknownFormat = errors.New("unknown record format")

// Open opens name for reading. Names ending in ".lz4" are decompressed and
// text in a charset other than UTF-8 is transcoded. Stdin reads from stdin
// and is not closed by the returned closer.
func Open(name, charset string, stdin io.Reader) (io.ReadCloser, error) {
	var (
		r      io.Reader
		closer io.Closer = noClose{}
	)
	if name == Stdin || name == "" {
		r = stdin
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		r, closer = f, f
	}

	wrapped, err := Wrap(r, name, charset)
	if err != nil {
		closer.Close()
		return nil, err
	}
	return readCloser{Reader: wrapped, Closer: closer}, nil
}

// Wrap layers LZ4 decompression (by name) and charset decoding over r.
func Wrap(r io.Reader, name, charset string) (io.Reader, error) {
	if strings.HasSuffix(strings.ToLower(name), ".lz4") {
		r = lz4.NewReader(r)
	}

	if charset == "" {
		return r, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", charset, err)
	}
	if canonical, _ := htmlindex.Name(enc); canonical == "utf-8" {
		return r, nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

type noClose struct{}

func (noClose) Close() error { return nil }

type readCloser struct {
	io.Reader
	io.Closer
}

// RecordReader yields records from a serialized record stream.
type RecordReader interface {
	Read() ([]string, error)
}

// NewRecordReader returns a reader for "json" (one JSON array of strings per
// value) or "msgpack" (a stream of msgpack string arrays). Read returns io.EOF
// once the stream is exhausted.
func NewRecordReader(format string, r io.Reader) (RecordReader, error) {
	switch format {
	case "json":
		return &jsonRecords{dec: json.NewDecoder(r)}, nil
	case "msgpack":
		return &msgpackRecords{dec: msgpack.NewDecoder(r)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

type jsonRecords struct {
	dec *json.Decoder
}

func (j *jsonRecords) Read() ([]string, error) {
	var rec []string
	if err := j.dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}

type msgpackRecords struct {
	dec *msgpack.Decoder
}

func (m *msgpackRecords) Read() ([]string, error) {
	var rec []string
	if err := m.dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}
