// Package config loads the linecsv command configuration. Values come from
// struct-tag defaults, an optional TOML or YAML file, LINECSV_* environment
// variables and finally command-line flags, in that order of precedence.
package config

import (
	"unicode/utf8"

	"github.com/oleg578/linecsv"
)

// Config holds all command configuration.
type Config struct {
	Decode  DecodeConfig  `toml:"decode" yaml:"decode"`
	Encode  EncodeConfig  `toml:"encode" yaml:"encode"`
	Input   InputConfig   `toml:"input" yaml:"input"`
	Output  OutputConfig  `toml:"output" yaml:"output"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// DecodeConfig controls how input lines are split into fields.
type DecodeConfig struct {
	// Mode is strict or loose (default: strict)
	Mode string `toml:"mode" yaml:"mode" env:"LINECSV_MODE" default:"strict" validate:"oneof=strict loose"`

	// Comma is the single-character field separator (default: ",")
	Comma string `toml:"comma" yaml:"comma" env:"LINECSV_COMMA" default:"," validate:"char"`

	// Quote is the single-character quote (default: ")
	Quote string `toml:"quote" yaml:"quote" env:"LINECSV_QUOTE" default:"\"" validate:"char,nefield=Comma"`

	// FieldsPerRecord enforces a record width; 0 learns it from the first record,
	// negative disables the check (default: -1)
	FieldsPerRecord int `toml:"fields_per_record" yaml:"fields_per_record" env:"LINECSV_FIELDS_PER_RECORD" default:"-1"`

	// RequireClosedQuote rejects a quoted field still open at end of input (default: false)
	RequireClosedQuote bool `toml:"require_closed_quote" yaml:"require_closed_quote" env:"LINECSV_REQUIRE_CLOSED_QUOTE" default:"false"`

	// SkipEmptyLines drops blank physical lines (default: false)
	SkipEmptyLines bool `toml:"skip_empty_lines" yaml:"skip_empty_lines" env:"LINECSV_SKIP_EMPTY_LINES" default:"false"`
}

// EncodeConfig controls how fields are written back as lines.
type EncodeConfig struct {
	// Separator joins encoded fields and may be several characters (default: ",")
	Separator string `toml:"separator" yaml:"separator" env:"LINECSV_SEPARATOR" default:"," validate:"min=1"`

	// CRLF terminates lines with \r\n instead of \n (default: false)
	CRLF bool `toml:"crlf" yaml:"crlf" env:"LINECSV_CRLF" default:"false"`
}

// InputConfig describes input streams.
type InputConfig struct {
	// Charset of the input text, any WHATWG encoding label (default: utf-8)
	Charset string `toml:"charset" yaml:"charset" env:"LINECSV_CHARSET" default:"utf-8" validate:"charset"`

	// Format of record streams read by the encode command: json or msgpack (default: json)
	Format string `toml:"format" yaml:"format" env:"LINECSV_INPUT_FORMAT" default:"json" validate:"oneof=json msgpack"`
}

// OutputConfig describes record output.
type OutputConfig struct {
	// Format of decoded records: json, msgpack or csv (default: json)
	Format string `toml:"format" yaml:"format" env:"LINECSV_OUTPUT_FORMAT" default:"json" validate:"oneof=json msgpack csv"`

	// Compress wraps the output in an LZ4 frame (default: false)
	Compress bool `toml:"compress" yaml:"compress" env:"LINECSV_COMPRESS" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `toml:"level" yaml:"level" env:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error"`

	// Format is the log output format: text, json (default: text)
	Format string `toml:"format" yaml:"format" env:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

// Runes returns the separator and quote as runes. Call it on a validated config.
func (d DecodeConfig) Runes() (comma, quote rune) {
	comma, _ = utf8.DecodeRuneInString(d.Comma)
	quote, _ = utf8.DecodeRuneInString(d.Quote)
	return comma, quote
}

// ParsedMode returns the decode mode, falling back to Strict for unknown names.
func (d DecodeConfig) ParsedMode() linecsv.Mode {
	m, err := linecsv.ParseMode(d.Mode)
	if err != nil {
		return linecsv.Strict
	}
	return m
}
