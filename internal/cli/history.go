package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/factorydata/internal/codec"
	"github.com/roach88/factorydata/internal/ledger"
)

// HistoryOptions holds the flags of the history command.
type HistoryOptions struct {
	Ledger string
	Limit  int
	Serial string
	Run    string
}

// RunDetail is a ledger run with its decoded entries.
type RunDetail struct {
	ledger.Run
	Values []EntryView `json:"entries"`
}

// EntryView is one ledger entry rendered for output.
type EntryView struct {
	ID    uint32 `json:"id"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history --ledger <ledger.db>",
		Short: "List the containers recorded in a ledger",
		Long: `List the factory-data containers recorded by gen --ledger, newest first.

--serial lists only the runs that wrote a given SERIAL_NUMBER; --run shows the
entries of one run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "ledger database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.Serial, "serial", "", "only runs that wrote this serial number")
	cmd.Flags().StringVar(&opts.Run, "run", "", "show the entries of one run")
	_ = cmd.MarkFlagRequired("ledger")
	return cmd
}

func runHistory(rootOpts *RootOptions, opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(rootOpts, cmd)

	l, err := ledger.OpenExisting(opts.Ledger)
	if err != nil {
		return formatter.Fail(ExitCommandError, "open ledger", err)
	}
	defer l.Close()

	if opts.Run != "" {
		run, err := l.Get(ctx, opts.Run)
		if err != nil {
			return formatter.Fail(ExitCommandError, "read run", err)
		}
		detail := RunDetail{Run: run}
		for _, e := range run.Entries {
			detail.Values = append(detail.Values, EntryView{
				ID: e.ID, Name: e.Name, Kind: e.Kind.String(), Value: codec.Display(e.Kind, e.Value),
			})
		}
		if formatter.IsJSON() {
			return formatter.Success(detail)
		}
		printRun(formatter.Writer, run)
		for _, v := range detail.Values {
			fmt.Fprintf(formatter.Writer, "  %3d %-32s %s\n", v.ID, v.Name, v.Value)
		}
		return nil
	}

	var runs []ledger.Run
	if opts.Serial != "" {
		runs, err = l.FindSerial(ctx, opts.Serial)
	} else {
		runs, err = l.Runs(ctx, opts.Limit)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, "read ledger", err)
	}

	if formatter.IsJSON() {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded")
		return nil
	}
	for _, r := range runs {
		printRun(formatter.Writer, r)
	}
	return nil
}

func printRun(w io.Writer, r ledger.Run) {
	fmt.Fprintf(w, "%s  %s  %d entries  %s  %s\n",
		r.ID, r.CreatedAt.Format(time.RFC3339), r.EntryCount, shortDigest(r.Digest), r.BinaryPath)
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
