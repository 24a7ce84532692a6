package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oleg578/linecsv"
	"github.com/oleg578/linecsv/internal/input"
)

func newCheckCommand(a *app) *cobra.Command {
	var maxErrors int

	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Report malformed records with their line and column",
		RunE: func(cmd *cobra.Command, args []string) error {
			total := 0
			for _, name := range inputs(args) {
				n, err := a.checkFile(cmd, name, maxErrors-total)
				total += n
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				if maxErrors > 0 && total >= maxErrors {
					a.logger.Warn("error limit reached", "max_errors", maxErrors)
					break
				}
			}
			if total > 0 {
				return fmt.Errorf("%w: %d", ErrCheckFailed, total)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&maxErrors, "max-errors", 0, "stop after this many malformed records (0 = no limit)")
	f.Int("fields", 0, "expected fields per record (0 learns from the first record, -1 disables)")
	f.Bool("skip-empty", false, "skip empty lines")
	return cmd
}

// checkFile decodes every record of name and logs each malformed one. It
// returns the number of malformed records; a non-nil error means the file
// could not be read at all.
func (a *app) checkFile(cmd *cobra.Command, name string, budget int) (int, error) {
	src, err := input.Open(name, a.cfg.Input.Charset, cmd.InOrStdin())
	if err != nil {
		return 0, err
	}
	defer src.Close()

	r := a.newReader(src)
	r.RequireClosedQuote = true
	bad, records := 0, 0
	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		records++

		var perr *linecsv.ParseError
		if errors.As(err, &perr) {
			bad++
			a.logger.Warn("malformed record",
				"file", name,
				"line", perr.Line,
				"column", perr.Column,
				"error", perr.Err,
			)
			if budget > 0 && bad >= budget {
				break
			}
			continue
		}
		if err != nil {
			return bad, err
		}
	}

	a.logger.Info("checked", "file", name, "records", records, "malformed", bad, "lines", r.Line())
	return bad, nil
}
