package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/factorydata/internal/format"
	"github.com/roach88/factorydata/internal/registry"
	"github.com/roach88/factorydata/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Path       string             `json:"path"`
	Valid      bool               `json:"valid"`
	Violations []schema.Violation `json:"violations,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <document.json|document.yaml>",
		Short: "Check a factory-data document against the parameter schema",
		Long: `Check a JSON or YAML factory-data document against the schema generated
from the parameter registry.

Every key must be a canonical parameter name and every value must have the
shape its kind expects. The document is not applied or converted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	data, err := format.ReadFile(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, "read document", err)
	}

	sc, err := schema.New(registry.Default())
	if err != nil {
		return formatter.Fail(ExitCommandError, "build schema", err)
	}
	formatter.VerboseLog("Validating %s against %d parameters", path, registry.Default().Len())

	violations, err := sc.ValidateFile(path, data)
	if err != nil {
		return formatter.Fail(ExitFailure, "validate", &format.FormatError{Source: path, Err: err})
	}

	result := ValidationResult{Path: path, Valid: len(violations) == 0, Violations: violations}
	if result.Valid {
		if formatter.IsJSON() {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "✓ %s valid\n", path)
		return nil
	}

	if formatter.IsJSON() {
		if err := formatter.Failure(ErrCodeSchema, violations[0].String(), result); err != nil {
			return err
		}
	} else {
		printViolations(formatter.Writer, violations)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d violation(s)", len(violations)))
}

func printViolations(w io.Writer, violations []schema.Violation) {
	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, v := range violations {
		if v.Line > 0 {
			fmt.Fprintf(w, "line %d\n", v.Line)
		}
		fmt.Fprintf(w, "  %s: %s: %s\n\n", ErrCodeSchema, v.Path, v.Message)
	}
}
