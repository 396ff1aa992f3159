package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/factorydata/internal/config"
	"github.com/roach88/factorydata/internal/ledger"
	"github.com/roach88/factorydata/internal/pipeline"
	"github.com/roach88/factorydata/internal/registry"
	"github.com/roach88/factorydata/internal/schema"
	"github.com/roach88/factorydata/internal/tlv"
)

// ActorProfile names values that come from a run profile.
const ActorProfile = "Profile"

// GenOptions holds the flags of the gen command.
type GenOptions struct {
	Profile      string
	JSONIn       string
	YAMLIn       string
	BinaryIn     string
	FlashDump    string
	FlashDumpLen int
	JSONOut      string
	YAMLOut      string
	BinaryOut    string
	Sets         []string
	Removes      []string
	Strict       bool
	Ledger       string
}

// GenResult is the JSON payload of the gen command.
type GenResult struct {
	Steps   []stepView  `json:"steps"`
	Files   []string    `json:"file_errors,omitempty"`
	Outputs []writeView `json:"outputs"`
	Entries int         `json:"entries"`
	Run     *ledger.Run `json:"ledger_run,omitempty"`
}

type stepView struct {
	Step   pipeline.Step `json:"step"`
	Source string        `json:"source,omitempty"`
	Events []tlv.Event   `json:"events"`
	Error  string        `json:"error,omitempty"`
	Code   string        `json:"code,omitempty"`
}

type writeView struct {
	Output pipeline.Step `json:"output"`
	Path   string        `json:"path"`
	Error  string        `json:"error,omitempty"`
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenOptions{}
	reg := registry.Default()
	var params *paramFlags

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate factory data from layered sources",
		Long: `Generate factory data.

Sources are applied in this order, later ones overriding earlier ones:
JSON document, YAML document, binary container, flash dump, profile [set]
and [files] values, --set flags, parameter flags, and finally --remove.

Parameter flags such as --vendor-id take a value; byte array parameters such
as --device-attestation-certificate take the path of a .pem or .der file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd, rootOpts, opts, reg, params)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Profile, "profile", "", "TOML run profile")
	f.StringVar(&opts.JSONIn, "json-in", "", "JSON document to read")
	f.StringVar(&opts.YAMLIn, "yaml-in", "", "YAML document to read")
	f.StringVar(&opts.BinaryIn, "binary-in", "", "binary container to read")
	f.StringVar(&opts.FlashDump, "flash-dump", "", "flash dump to read (erased flash ends the data)")
	f.IntVar(&opts.FlashDumpLen, "flash-dump-len", pipeline.DefaultDumpLen, "bytes of the flash dump to read")
	f.StringVar(&opts.JSONOut, "json-out", "", "JSON document to write")
	f.StringVar(&opts.YAMLOut, "yaml-out", "", "YAML document to write")
	f.StringVar(&opts.BinaryOut, "binary-out", "", "binary container to write")
	f.StringArrayVar(&opts.Sets, "set", nil, "set a parameter, NAME=VALUE (repeatable)")
	f.StringArrayVar(&opts.Removes, "remove", nil, "remove a parameter from the outputs (repeatable)")
	f.BoolVar(&opts.Strict, "strict", false, "reject documents that fail the schema and fail on any rejected value")
	f.StringVar(&opts.Ledger, "ledger", "", "SQLite ledger recording every written container")
	params = bindParamFlags(cmd, reg)

	return cmd
}

func runGen(cmd *cobra.Command, rootOpts *RootOptions, opts *GenOptions, reg *registry.Registry, params *paramFlags) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)
	formatter := newFormatter(rootOpts, cmd)

	var profile *config.Profile
	if opts.Profile != "" {
		var err error
		profile, err = config.Load(opts.Profile)
		if err != nil {
			return formatter.Fail(ExitCommandError, "load profile", err)
		}
		mergeProfile(cmd, opts, profile)
		logger.Debug().Str("profile", opts.Profile).Msg("profile loaded")
	}

	plan, fileFailures, err := buildPlan(cmd, opts, profile, reg, params)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid arguments", err)
	}
	if opts.Strict {
		sc, err := schema.New(reg)
		if err != nil {
			return formatter.Fail(ExitCommandError, "build schema", err)
		}
		plan.Validator = sc
	}

	store := tlv.NewStore(reg)
	res, err := pipeline.Run(ctx, plan, store)
	if err != nil {
		return formatter.Fail(ExitCommandError, "gen", err)
	}

	outs, err := pipeline.WriteOutputs(ctx, store, pipeline.Outputs{
		JSONPath:   opts.JSONOut,
		YAMLPath:   opts.YAMLOut,
		BinaryPath: opts.BinaryOut,
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, "gen", err)
	}

	result := GenResult{Entries: store.Len()}
	for _, f := range fileFailures {
		result.Files = append(result.Files, f.String())
	}
	for _, s := range res.Steps {
		v := stepView{Step: s.Step, Source: s.Source, Events: s.Events}
		if s.Err != nil {
			v.Error, v.Code = s.Err.Error(), ErrorCode(s.Err)
		}
		result.Steps = append(result.Steps, v)
	}
	for _, w := range outs.Writes {
		v := writeView{Output: w.Step, Path: w.Path}
		if w.Err != nil {
			v.Error = w.Err.Error()
		}
		result.Outputs = append(result.Outputs, v)
	}

	var ledgerErr error
	if opts.Ledger != "" {
		result.Run, ledgerErr = recordRun(ctx, opts, outs, store)
	}

	if formatter.IsJSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		printGen(formatter.Writer, result)
	}

	switch {
	case outs.Err() != nil:
		return WrapExitError(ExitFailure, "write outputs", outs.Err())
	case ledgerErr != nil:
		return WrapExitError(ExitFailure, "record ledger run", ledgerErr)
	case opts.Strict && (len(res.Failed()) > 0 || rejected(res) > 0 || len(fileFailures) > 0):
		return NewExitError(ExitFailure, "strict mode: some sources or values were rejected")
	}
	return nil
}

// mergeProfile fills options the command line left unset from the profile.
// Profile values are prepended to --set and --remove so flags win.
func mergeProfile(cmd *cobra.Command, opts *GenOptions, p *config.Profile) {
	pick := func(flag string, dst *string, v string) {
		if !cmd.Flags().Changed(flag) && v != "" {
			*dst = v
		}
	}
	pick("json-in", &opts.JSONIn, p.Inputs.JSON)
	pick("yaml-in", &opts.YAMLIn, p.Inputs.YAML)
	pick("binary-in", &opts.BinaryIn, p.Inputs.Binary)
	pick("flash-dump", &opts.FlashDump, p.Inputs.FlashDump)
	pick("json-out", &opts.JSONOut, p.Outputs.JSON)
	pick("yaml-out", &opts.YAMLOut, p.Outputs.YAML)
	pick("binary-out", &opts.BinaryOut, p.Outputs.Binary)
	pick("ledger", &opts.Ledger, p.Ledger)
	if !cmd.Flags().Changed("flash-dump-len") && p.Inputs.FlashDumpLen > 0 {
		opts.FlashDumpLen = p.Inputs.FlashDumpLen
	}
	if !cmd.Flags().Changed("strict") {
		opts.Strict = p.Strict
	}
	opts.Removes = append(append([]string(nil), p.Remove...), opts.Removes...)
}

// buildPlan turns the options into a pipeline plan. Profile [set] and
// [files] entries come before --set flags, which come before parameter flags.
func buildPlan(cmd *cobra.Command, opts *GenOptions, profile *config.Profile, reg *registry.Registry, params *paramFlags) (pipeline.Plan, []fileFailure, error) {
	plan := pipeline.Plan{
		JSONPath:   opts.JSONIn,
		YAMLPath:   opts.YAMLIn,
		BinaryPath: opts.BinaryIn,
		Removals:   opts.Removes,
	}
	if opts.FlashDump != "" {
		if opts.FlashDumpLen < 0 {
			return plan, nil, errors.New("--flash-dump-len must not be negative")
		}
		plan.Raw = pipeline.NewFileDump(opts.FlashDump, opts.FlashDumpLen)
	}

	var failures []fileFailure
	if profile != nil {
		for _, a := range profile.Set {
			plan.Overrides = append(plan.Overrides, pipeline.Override{
				Name:  a.Name,
				Value: byteTokens(reg, a.Name, a.Value),
				Actor: ActorProfile,
			})
		}
		for _, a := range profile.Files {
			path := a.Value.(string)
			o, err := loadFileOverride(reg, a.Name, path, ActorProfile)
			if err != nil {
				failures = append(failures, fileFailure{Name: a.Name, Path: path, Err: err})
				continue
			}
			plan.Overrides = append(plan.Overrides, o)
		}
	}

	for _, s := range opts.Sets {
		o, err := parseAssignment(reg, s)
		if err != nil {
			return plan, nil, err
		}
		plan.Overrides = append(plan.Overrides, o)
	}

	flagOverrides, flagFailures := params.overrides(cmd)
	plan.Overrides = append(plan.Overrides, flagOverrides...)
	failures = append(failures, flagFailures...)
	return plan, failures, nil
}

// recordRun stores the written container in the ledger. Nothing is recorded
// unless the binary container was written.
func recordRun(ctx context.Context, opts *GenOptions, outs *pipeline.OutputResult, store *tlv.Store) (*ledger.Run, error) {
	logger := zerolog.Ctx(ctx)
	if !outs.BinaryWritten() {
		logger.Warn().Str("ledger", opts.Ledger).Msg("binary container not written, ledger not updated")
		return nil, nil
	}

	l, err := ledger.Open(opts.Ledger)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	run, err := l.Record(ctx, ledger.Run{BinaryPath: opts.BinaryOut, Entries: store.Snapshot()})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("run", run.ID).Str("digest", run.Digest).Msg("ledger run recorded")
	return &run, nil
}

func rejected(res *pipeline.Result) int {
	n := 0
	for _, s := range res.Steps {
		n += s.Rejected()
	}
	return n
}

var stepTitles = map[pipeline.Step]string{
	pipeline.StepJSON:      "Read from Json file",
	pipeline.StepYAML:      "Read from Yaml file",
	pipeline.StepBinary:    "Read from binary file",
	pipeline.StepRaw:       "Read from flash dump",
	pipeline.StepOverrides: "Analyze parameters",
	pipeline.StepRemovals:  "Remove parameters",
}

func printGen(w io.Writer, r GenResult) {
	for _, f := range r.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	for _, s := range r.Steps {
		title := stepTitles[s.Step]
		if s.Source != "" {
			title += " " + s.Source
		}
		fmt.Fprintln(w, title)
		for _, ev := range s.Events {
			fmt.Fprintf(w, "  %s\n", ev)
		}
		if s.Error != "" {
			fmt.Fprintf(w, "  ✗ [%s] %s\n", s.Code, s.Error)
		}
	}
	for _, o := range r.Outputs {
		if o.Error != "" {
			fmt.Fprintf(w, "✗ Write %s file %s failed: %s\n", o.Output, o.Path, o.Error)
			continue
		}
		fmt.Fprintf(w, "✓ Wrote %s file %s\n", o.Output, o.Path)
	}
	if r.Run != nil {
		fmt.Fprintf(w, "✓ Recorded ledger run %s (digest %s)\n", r.Run.ID, r.Run.Digest)
	}
}
