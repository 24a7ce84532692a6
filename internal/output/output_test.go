package output

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

var records = [][]string{
	{"id", "note"},
	{"1", `say "hi"`},
	{"2", ""},
}

func writeAll(t *testing.T, w io.Writer, opts Options) {
	t.Helper()
	rw, err := New(w, opts)
	require.NoError(t, err)
	for _, rec := range records {
		require.NoError(t, rw.WriteRecord(rec))
	}
	require.NoError(t, rw.Close())
}

func TestJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writeAll(t, &buf, Options{Format: "json"})
	assert.Equal(t, "[\"id\",\"note\"]\n[\"1\",\"say \\\"hi\\\"\"]\n[\"2\",\"\"]\n", buf.String())
}

func TestJSONEmptyRecord(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rw, err := New(&buf, Options{Format: "json"})
	require.NoError(t, err)
	require.NoError(t, rw.WriteRecord(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writeAll(t, &buf, Options{Format: "csv", Separator: ";", CRLF: true})
	assert.Equal(t, "\"id\";\"note\"\r\n\"1\";\"say \"\"hi\"\"\"\r\n\"2\";\"\"\r\n", buf.String())
}

func TestMsgpack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writeAll(t, &buf, Options{Format: "msgpack"})

	dec := msgpack.NewDecoder(&buf)
	for _, want := range records {
		var got []string
		require.NoError(t, dec.Decode(&got))
		assert.Equal(t, want, got)
	}
}

func TestCompressed(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writeAll(t, &buf, Options{Format: "csv", Compress: true})

	data, err := io.ReadAll(lz4.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"))
	assert.True(t, strings.HasPrefix(string(data), "\"id\",\"note\"\n"))
}

func TestUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := New(io.Discard, Options{Format: "xml"})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
