// Package cli implements the linecsv command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/oleg578/linecsv/internal/config"
	"github.com/oleg578/linecsv/internal/input"
	"github.com/oleg578/linecsv/internal/logging"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// ErrCheckFailed is returned by the check command when malformed records were found.
var ErrCheckFailed = errors.New("malformed records found")

type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

// NewRootCommand builds the command tree. Streams default to the process
// stdio when nil.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "linecsv",
		Short:         "Decode, encode and check quoted CSV lines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	if stdin != nil {
		root.SetIn(stdin)
	}
	if stdout != nil {
		root.SetOut(stdout)
	}
	if stderr != nil {
		root.SetErr(stderr)
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to a TOML or YAML config file")
	pf.String("mode", "", "decode mode: strict or loose")
	pf.String("comma", "", "single-character field separator")
	pf.String("quote", "", "single-character quote")
	pf.String("charset", "", "input charset label (utf-8, latin1, windows-1251, ...)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")

	root.AddCommand(
		newDecodeCommand(a),
		newEncodeCommand(a),
		newCheckCommand(a),
		newVersionCommand(),
	)
	return root
}

// setup loads the configuration, applies explicitly set flags over it and
// installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	overrides := []struct {
		flag string
		dst  *string
	}{
		{"mode", &cfg.Decode.Mode},
		{"comma", &cfg.Decode.Comma},
		{"quote", &cfg.Decode.Quote},
		{"charset", &cfg.Input.Charset},
		{"log-level", &cfg.Logging.Level},
		{"log-format", &cfg.Logging.Format},
		{"format", &cfg.Output.Format},
		{"in-format", &cfg.Input.Format},
		{"separator", &cfg.Encode.Separator},
	}
	for _, o := range overrides {
		if f := flags.Lookup(o.flag); f != nil && f.Changed {
			*o.dst = f.Value.String()
		}
	}
	if f := flags.Lookup("crlf"); f != nil && f.Changed {
		cfg.Encode.CRLF, _ = flags.GetBool("crlf")
	}
	if f := flags.Lookup("compress"); f != nil && f.Changed {
		cfg.Output.Compress, _ = flags.GetBool("compress")
	}
	if f := flags.Lookup("fields"); f != nil && f.Changed {
		cfg.Decode.FieldsPerRecord, _ = flags.GetInt("fields")
	}
	if f := flags.Lookup("skip-empty"); f != nil && f.Changed {
		cfg.Decode.SkipEmptyLines, _ = flags.GetBool("skip-empty")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	a.cfg = cfg
	a.logger = logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), "linecsv "+Version+"\n")
			return err
		},
	}
}

// inputs returns the file arguments, or stdin when there are none.
func inputs(args []string) []string {
	if len(args) == 0 {
		return []string{input.Stdin}
	}
	return args
}
