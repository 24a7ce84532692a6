package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oleg578/linecsv"
	"github.com/oleg578/linecsv/internal/input"
	"github.com/oleg578/linecsv/internal/output"
)

func newDecodeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [file...]",
		Short: "Decode CSV lines into json, msgpack or re-quoted csv records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDecode(cmd, inputs(args))
		},
	}

	f := cmd.Flags()
	f.String("format", "", "output format: json, msgpack or csv")
	f.String("separator", "", "field separator for csv output (may be several characters)")
	f.Bool("crlf", false, "terminate csv output lines with \\r\\n")
	f.Bool("compress", false, "compress output with lz4")
	f.Int("fields", 0, "expected fields per record (0 learns from the first record, -1 disables)")
	f.Bool("skip-empty", false, "skip empty lines")
	return cmd
}

func (a *app) runDecode(cmd *cobra.Command, names []string) error {
	_, quote := a.cfg.Decode.Runes()
	out, err := output.New(cmd.OutOrStdout(), output.Options{
		Format:    a.cfg.Output.Format,
		Separator: a.cfg.Encode.Separator,
		Quote:     quote,
		CRLF:      a.cfg.Encode.CRLF,
		Compress:  a.cfg.Output.Compress,
	})
	if err != nil {
		return err
	}

	for _, name := range names {
		n, err := a.decodeFile(cmd, name, out)
		if err != nil {
			out.Close()
			return fmt.Errorf("%s: %w", name, err)
		}
		a.logger.Debug("decoded", "file", name, "records", n)
	}
	return out.Close()
}

func (a *app) decodeFile(cmd *cobra.Command, name string, out output.RecordWriter) (int, error) {
	src, err := input.Open(name, a.cfg.Input.Charset, cmd.InOrStdin())
	if err != nil {
		return 0, err
	}
	defer src.Close()

	r := a.newReader(src)
	records := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		if err := out.WriteRecord(rec); err != nil {
			return records, err
		}
		records++
	}
}

func (a *app) newReader(src io.Reader) *linecsv.Reader {
	comma, quote := a.cfg.Decode.Runes()
	r := linecsv.NewReader(src)
	r.Comma = comma
	r.Quote = quote
	r.Mode = a.cfg.Decode.ParsedMode()
	r.FieldsPerRecord = a.cfg.Decode.FieldsPerRecord
	r.SkipEmptyLines = a.cfg.Decode.SkipEmptyLines
	r.RequireClosedQuote = a.cfg.Decode.RequireClosedQuote
	r.ReuseRecord = true
	return r
}
