package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oleg578/linecsv"
	"github.com/oleg578/linecsv/internal/input"
)

func newEncodeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [file...]",
		Short: "Encode json or msgpack records as quoted CSV lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEncode(cmd, inputs(args))
		},
	}

	f := cmd.Flags()
	f.String("in-format", "", "input record format: json or msgpack")
	f.String("separator", "", "field separator (may be several characters)")
	f.Bool("crlf", false, "terminate lines with \\r\\n")
	return cmd
}

func (a *app) runEncode(cmd *cobra.Command, names []string) error {
	_, quote := a.cfg.Decode.Runes()
	w := linecsv.NewWriter(cmd.OutOrStdout())
	w.Comma = a.cfg.Encode.Separator
	w.Quote = quote
	w.UseCRLF = a.cfg.Encode.CRLF

	for _, name := range names {
		n, err := a.encodeFile(cmd, name, w)
		if err != nil {
			w.Flush()
			return fmt.Errorf("%s: %w", name, err)
		}
		a.logger.Debug("encoded", "file", name, "records", n)
	}
	return w.Flush()
}

func (a *app) encodeFile(cmd *cobra.Command, name string, w *linecsv.Writer) (int, error) {
	// Record streams are UTF-8 by definition of both formats.
	src, err := input.Open(name, "", cmd.InOrStdin())
	if err != nil {
		return 0, err
	}
	defer src.Close()

	rr, err := input.NewRecordReader(a.cfg.Input.Format, src)
	if err != nil {
		return 0, err
	}

	records := 0
	for {
		rec, err := rr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		if err := w.Write(rec); err != nil {
			return records, err
		}
		records++
	}
}
