package linecsv

import (
	"strings"
	"testing"
)

func FuzzDecodeRoundTrip(f *testing.F) {
	seeds := [][2]string{
		{"", ""},
		{"a", "b"},
		{`"`, `""`},
		{"a,b", "c\"d"},
		{"two\nlines", "\r"},
		{"日本", "§"},
		{"caf\xe9", "\xff\"\xfe"},
	}
	for _, seed := range seeds {
		f.Add(seed[0], seed[1])
	}

	f.Fuzz(func(t *testing.T, a, b string) {
		fields := []string{a, b}
		line := EncodeLine(fields, ",")
		for _, mode := range []Mode{Strict, Loose} {
			got, err := Decode(line, ',', mode)
			if err != nil {
				t.Fatalf("Decode(%q, %s) error = %v", truncateForMessage(line), mode, err)
			}
			if !fieldsEqual(got, fields) {
				t.Fatalf("round trip mismatch in %s mode:\n got: %q\nwant: %q", mode, got, fields)
			}
		}
	})
}

func FuzzDecodeModes(f *testing.F) {
	seeds := []string{
		"",
		"a,b,c",
		`a,"b,b",c`,
		`"a""b"`,
		`a"b`,
		"a\nb",
		`"Hello "odd" quotes"`,
		`""""Hello""" odd quotes"`,
		`"unterminated`,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, line string) {
		if len(line) > 1<<12 {
			t.Skip()
		}

		loose, err := Decode(line, ',', Loose)
		if err != nil {
			t.Fatalf("Loose mode must not fail, got %v for %q", err, truncateForMessage(line))
		}
		if len(loose) == 0 {
			t.Fatalf("Loose mode returned no fields for %q", truncateForMessage(line))
		}

		strict, err := Decode(line, ',', Strict)
		if err != nil {
			if strict != nil {
				t.Fatalf("Strict mode returned fields alongside error %v", err)
			}
			return
		}
		// Loose only diverges where Strict fails.
		if !fieldsEqual(strict, loose) {
			t.Fatalf("Strict and Loose disagree on %q:\nstrict=%q\nloose=%q", truncateForMessage(line), strict, loose)
		}
		if len(strict) > strings.Count(line, ",")+1 {
			t.Fatalf("more fields than separators allow: %d for %q", len(strict), truncateForMessage(line))
		}
	})
}

func fieldsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func truncateForMessage(s string) string {
	const max = 256
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
