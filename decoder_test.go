package linecsv

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		sep  rune
		want []string
	}{
		{name: "empty", line: "", want: []string{""}},
		{name: "lonelySeparator", line: ",", want: []string{"", ""}},
		{name: "twoSeparators", line: ",,", want: []string{"", "", ""}},
		{name: "leadingEmpty", line: ",hello", want: []string{"", "hello"}},
		{name: "trailingEmpty", line: "hello,", want: []string{"hello", ""}},
		{name: "plain", line: "a,b,c", want: []string{"a", "b", "c"}},
		{name: "numbers", line: "hello,world,100.0", want: []string{"hello", "world", "100.0"}},
		{name: "spacesInUnquoted", line: "hello world,bye world", want: []string{"hello world", "bye world"}},
		{name: "spacesAroundSeparator", line: " hello , world ", want: []string{" hello ", " world "}},
		{name: "quoted", line: `"hello","world"`, want: []string{"hello", "world"}},
		{name: "mixed", line: `hello,"world",foo`, want: []string{"hello", "world", "foo"}},
		{name: "separatorInQuotes", line: `"a,b"`, want: []string{"a,b"}},
		{name: "separatorAtQuotedStart", line: `",hello"`, want: []string{",hello"}},
		{name: "separatorAtQuotedEnd", line: `"hello,"`, want: []string{"hello,"}},
		{name: "doubledQuote", line: `"a""b"`, want: []string{`a"b`}},
		{name: "escapedAtEnd", line: `"hello ""world"""`, want: []string{`hello "world"`}},
		{name: "escapedAtStart", line: `"""hello"" world"`, want: []string{`"hello" world`}},
		{name: "escapedBothEnds", line: `"""hello world"""`, want: []string{`"hello world"`}},
		{name: "emptyQuoted", line: `""`, want: []string{""}},
		{name: "emptyQuotedPair", line: `"",""`, want: []string{"", ""}},
		{name: "emptyQuotedTriple", line: `"","",""`, want: []string{"", "", ""}},
		{name: "onlyQuote", line: `""""`, want: []string{`"`}},
		{name: "onlyQuotes", line: `"""","""",""""`, want: []string{`"`, `"`, `"`}},
		{name: "onlyTwoQuotes", line: `""""""`, want: []string{`""`}},
		{name: "onlyTwoQuotesPair", line: `"""""",""""""`, want: []string{`""`, `""`}},
		{name: "newlineInQuotes", line: "\"hello\nworld\"", want: []string{"hello\nworld"}},
		{name: "crlfInQuotes", line: "\"a\r\nb\",c", want: []string{"a\r\nb", "c"}},
		{name: "unterminatedFlushed", line: `"abc`, want: []string{"abc"}},
		{name: "unterminatedKeepsSeparator", line: `x,"a,b`, want: []string{"x", "a,b"}},
		{name: "tab", line: "a\tb\t\"c\td\"", sep: '\t', want: []string{"a", "b", "c\td"}},
		{name: "semicolon", line: `1;"2;3";4`, sep: ';', want: []string{"1", "2;3", "4"}},
		{name: "commaIsDataWithOtherSeparator", line: "a,b|c", sep: '|', want: []string{"a,b", "c"}},
		{name: "multiByteSeparator", line: `x§"y§z"§`, sep: '§', want: []string{"x", "y§z", ""}},
		{name: "multiByteContent", line: `日本,"語,ü"`, want: []string{"日本", "語,ü"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sep := tc.sep
			if sep == 0 {
				sep = ','
			}
			for _, mode := range []Mode{Strict, Loose} {
				got, err := Decode(tc.line, sep, mode)
				require.NoError(t, err, "mode %s", mode)
				assert.Equal(t, tc.want, got, "mode %s", mode)
			}
		})
	}
}

func TestDecodeStrictErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		line   string
		err    error
		column int
	}{
		{name: "quoteInUnquoted", line: `a"b`, err: ErrUnexpectedQuote, column: 2},
		{name: "quotedWordInUnquoted", line: `thisisa"long"word`, err: ErrUnexpectedQuote, column: 8},
		{name: "doubledInUnquoted", line: `thisisa""long""word`, err: ErrUnexpectedQuote, column: 8},
		{name: "spaceBeforeQuotedField", line: `"hello", "world"`, err: ErrUnexpectedQuote, column: 10},
		{name: "quotedThenWord", line: `hello "world"`, err: ErrUnexpectedQuote, column: 7},
		{name: "newline", line: "a\nb", err: ErrNewlineOutsideQuote, column: 2},
		{name: "newlineSecondField", line: "hello world,hello\nworld", err: ErrNewlineOutsideQuote, column: 18},
		{name: "carriageReturn", line: "a\rb", err: ErrNewlineOutsideQuote, column: 2},
		{name: "spaceAfterQuoted", line: `"hello" ,"world"`, err: ErrInvalidSeparator, column: 8},
		{name: "wordAfterQuoted", line: `"hello" world`, err: ErrInvalidSeparator, column: 8},
		{name: "emptyPairThenWord", line: `""hello"" world`, err: ErrInvalidSeparator, column: 3},
		{name: "tripleThenWord", line: `"""hello""" world`, err: ErrInvalidSeparator, column: 12},
		{name: "oddQuotesInside", line: `"Hello "odd" quotes"`, err: ErrInvalidSeparator, column: 9},
		{name: "oddQuotesLeading", line: `""Hello" odd quotes"`, err: ErrInvalidSeparator, column: 3},
		{name: "oddQuotesTrailing", line: `"Hello odd "quotes""`, err: ErrInvalidSeparator, column: 13},
		{name: "tripleQuotesInside", line: `"Hello """odd""" quotes"`, err: ErrInvalidSeparator, column: 11},
		{name: "fourQuotesLeading", line: `""""Hello""" odd quotes"`, err: ErrInvalidSeparator, column: 5},
		{name: "tripleQuotesTrailing", line: `"Hello odd """quotes""""`, err: ErrInvalidSeparator, column: 15},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode(tc.line, ',', Strict)
			assert.Nil(t, got, "no partial result on error")

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, 0, perr.Line)
			assert.Equal(t, tc.column, perr.Column)
		})
	}
}

func TestDecodeLoose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want []string
	}{
		{name: "quoteInUnquoted", line: `a"b`, want: []string{`a"b`}},
		{name: "doubledInUnquoted", line: `a""b,c`, want: []string{`a""b`, "c"}},
		{name: "newline", line: "a\nb", want: []string{"a\nb"}},
		{name: "carriageReturn", line: "a\r,b", want: []string{"a\r", "b"}},
		{name: "oddQuotesInside", line: `"Hello "odd" quotes"`, want: []string{`Hello "odd" quotes`}},
		{name: "retractedCloseSwallowsSeparator", line: `"a"b,c`, want: []string{`a"b,c`}},
		{name: "spaceAfterQuoted", line: `"hello" ,"world"`, want: []string{`hello" ,"world`}},
		{name: "emptyPairThenWord", line: `""hello"" world`, want: []string{`""hello"" world`}},
		{name: "fourQuotesLeading", line: `""""Hello""" odd quotes"`, want: []string{`""""Hello""" odd quotes"`}},
		{name: "tripleQuotesTrailing", line: `"Hello odd """quotes""""`, want: []string{`Hello odd """quotes""`}},
		{name: "tripleRetractedInFull", line: `"x"""y"`, want: []string{`x"""y`}},
		{name: "quotedThenPlain", line: `"a",b"c`, want: []string{"a", `b"c`}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode(tc.line, ',', Loose)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeStrictAgreesWithLoose(t *testing.T) {
	t.Parallel()

	lines := []string{
		`a,"b""c",d`,
		`"x, y",,"z"`,
		"\"multi\nline\",tail",
		`"""",""""""`,
	}
	for _, line := range lines {
		strict, err := Decode(line, ',', Strict)
		require.NoError(t, err)
		loose, err := Decode(line, ',', Loose)
		require.NoError(t, err)
		assert.Equal(t, strict, loose, line)
	}
}

func TestDecoderRequireClosedQuote(t *testing.T) {
	t.Parallel()

	d := Decoder{RequireClosedQuote: true}

	_, err := d.Decode(`a,"bc`)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
	assert.Equal(t, 6, perr.Column)

	got, err := d.Decode(`a,"bc"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "bc"}, got)

	d.Mode = Loose
	_, err = d.Decode(`"open`)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
}

func TestDecoderCustomQuote(t *testing.T) {
	t.Parallel()

	d := Decoder{Quote: '\''}
	got, err := d.Decode(`'a''b',"c"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a'b", `"c"`}, got)

	d = Decoder{Comma: ';', Quote: '¦'}
	got, err = d.Decode("¦a¦¦b¦;¦¦;¦¦¦¦")
	require.NoError(t, err)
	assert.Equal(t, []string{"a¦b", "", "¦"}, got)

	_, err = d.Decode("¦a¦ ;b")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, ErrInvalidSeparator)
	assert.Equal(t, len("¦a¦")+1, perr.Column)
}

func TestDecoderInvalidDelimiter(t *testing.T) {
	t.Parallel()

	for _, d := range []Decoder{
		{Comma: '"'},
		{Comma: '\n'},
		{Comma: '\r'},
		{Quote: ','},
		{Comma: 0xD800},
		{Comma: 'x', Quote: 'x'},
	} {
		_, err := d.Decode("a,b")
		assert.ErrorIs(t, err, ErrInvalidDelimiter, "%+v", d)
	}
}

func TestDecodeBytes(t *testing.T) {
	t.Parallel()

	got, err := DecodeBytes([]byte(`a,"b""c",`), ',', Strict)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte(`b"c`), {}}, got)

	_, err = DecodeBytes([]byte(`a"b`), ',', Strict)
	assert.ErrorIs(t, err, ErrUnexpectedQuote)
}

func TestDecodeInvalidUTF8(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want []string
	}{
		{name: "unquoted", line: "caf\xe9,ok", want: []string{"caf\xe9", "ok"}},
		{name: "quoted", line: "\"caf\xe9\",ok", want: []string{"caf\xe9", "ok"}},
		{name: "besideEscapedQuote", line: "\"\xff\"\"\xfe\"", want: []string{"\xff\"\xfe"}},
		{name: "truncatedSequence", line: "\xe2\x82,\"\xe2\x82\"", want: []string{"\xe2\x82", "\xe2\x82"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			for _, mode := range []Mode{Strict, Loose} {
				got, err := Decode(tc.line, ',', mode)
				require.NoError(t, err, mode)
				assert.Equal(t, tc.want, got, mode)
			}
		})
	}

	t.Run("roundTrip", func(t *testing.T) {
		t.Parallel()

		fields := []string{"caf\xe9", "ok", "\x80\"\xff"}
		got, err := Decode(EncodeLine(fields, ","), ',', Strict)
		require.NoError(t, err)
		assert.Equal(t, fields, got)
	})

	t.Run("bytes", func(t *testing.T) {
		t.Parallel()

		got, err := DecodeBytes([]byte("caf\xe9,x"), ',', Strict)
		require.NoError(t, err)
		assert.Equal(t, [][]byte{[]byte("caf\xe9"), []byte("x")}, got)
	})

	t.Run("quoteAfterInvalidByte", func(t *testing.T) {
		t.Parallel()

		_, err := Decode("\xff\"", ',', Strict)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.ErrorIs(t, err, ErrUnexpectedQuote)
		assert.Equal(t, 2, perr.Column)
	})

	t.Run("runeBufferReplaces", func(t *testing.T) {
		t.Parallel()

		var out Fields[[]rune]
		require.NoError(t, DecodeTo[[]rune](nil, "a\xe9", &RuneBuffer{}, &out))
		assert.Equal(t, Fields[[]rune]{{'a', utf8.RuneError}}, out)
	})
}

func TestDecodeToRuneBufferAndCallback(t *testing.T) {
	t.Parallel()

	var got []string
	sink := SinkFunc[[]rune](func(field []rune) {
		got = append(got, string(field))
	})

	err := DecodeTo[[]rune](nil, `ü,"ß""x",`, &RuneBuffer{}, sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"ü", `ß"x`, ""}, got)
}

func TestDecodeToPushesBeforeFailure(t *testing.T) {
	t.Parallel()

	var fields Fields[string]
	err := DecodeTo[string](&Decoder{}, `a,b,c"d`, &StringBuffer{}, &fields)
	assert.ErrorIs(t, err, ErrUnexpectedQuote)
	assert.Equal(t, Fields[string]{"a", "b"}, fields)
}

func TestDecodeFieldCount(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"", "a", `"a,b",c`, `,,,"",`, "x,\"y\nz\",w"} {
		got, err := Decode(line, ',', Strict)
		require.NoError(t, err)

		unquoted := 0
		inQuotes := false
		for _, c := range line {
			switch {
			case c == '"':
				inQuotes = !inQuotes
			case c == ',' && !inQuotes:
				unquoted++
			}
		}
		assert.Len(t, got, unquoted+1, line)
	}
}

func TestParseErrorMethods(t *testing.T) {
	t.Parallel()

	err := &ParseError{Line: 3, Column: 7, Err: ErrUnexpectedQuote}
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "column 7")
	assert.ErrorIs(t, err, ErrUnexpectedQuote)
	assert.ErrorIs(t, err.Unwrap(), ErrUnexpectedQuote)

	single := &ParseError{Column: 2, Err: ErrNewlineOutsideQuote}
	assert.NotContains(t, single.Error(), "line")
	assert.Contains(t, single.Error(), "column 2")

	var nilErr *ParseError
	assert.Empty(t, nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestMode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "strict", Strict.String())
	assert.Equal(t, "loose", Loose.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())

	m, err := ParseMode(" LOOSE ")
	require.NoError(t, err)
	assert.Equal(t, Loose, m)

	m, err = ParseMode("strict")
	require.NoError(t, err)
	assert.Equal(t, Strict, m)

	_, err = ParseMode("lenient")
	assert.Error(t, err)
}

func BenchmarkDecode(b *testing.B) {
	line := strings.Repeat(`plain,"quoted, with comma","say ""hi""",`, 8) + "end"
	b.ReportAllocs()
	b.SetBytes(int64(len(line)))

	for i := 0; i < b.N; i++ {
		if _, err := Decode(line, ',', Strict); err != nil {
			b.Fatal(err)
		}
	}
}
