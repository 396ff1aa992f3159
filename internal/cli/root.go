package cli

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/factorydata/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the factorydata CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "factorydata",
		Short: "Matter factory-data provisioning tool",
		Long: `Build, inspect and record the TLV factory-data container flashed into
Matter devices.

Values are layered from a JSON or YAML document, a binary container, a flash
dump and command-line overrides, then written back out as JSON, YAML and/or
the binary container.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			logger := commandLogger(cmd, opts)
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewGenCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewBundleCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// commandLogger builds the logger for one invocation. Logs always go to
// stderr so they never mix with JSON output.
func commandLogger(cmd *cobra.Command, opts *RootOptions) zerolog.Logger {
	cfg := logging.DefaultConfig(logging.ProfileRuntime)
	cfg.Level = zerolog.WarnLevel
	if opts.Verbose {
		cfg.Level = zerolog.DebugLevel
	}
	logging.ApplyEnvOverrides(&cfg)
	cfg.Out = cmd.ErrOrStderr()
	return logging.New(cfg)
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
