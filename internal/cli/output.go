package cli

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/roach88/factorydata/internal/certs"
	"github.com/roach88/factorydata/internal/codec"
	"github.com/roach88/factorydata/internal/format"
	"github.com/roach88/factorydata/internal/imagebin"
	"github.com/roach88/factorydata/internal/registry"
	"github.com/roach88/factorydata/internal/schema"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation failure, failed output write, strict-mode rejection
	ExitCommandError = 2 // Command error (bad flags, unreadable profile, missing input)
)

// Error codes reported in JSON responses.
const (
	ErrCodeGeneric   = "E001" // Generic/unknown error
	ErrCodeNotFound  = "E002" // Input file not found
	ErrCodeFormat    = "E003" // Malformed document
	ErrCodeTruncated = "E004" // Truncated binary record
	ErrCodeWrite     = "E005" // Output write failed
	ErrCodeLedger    = "E006" // Ledger error
	ErrCodeSchema    = "E007" // Schema violation
	ErrCodeUsage     = "E008" // Invalid flags or profile
	ErrCodeCert      = "E009" // Certificate or key file unusable
	ErrCodeParam     = "E010" // Unknown parameter or invalid value
	ErrCodeImage     = "E011" // Malformed image bundle
)

// ErrorCode maps an error to its response code.
func ErrorCode(err error) string {
	var (
		schemaErr      *schema.ValidationError
		notFound       *format.NotFoundError
		formatErr      *format.FormatError
		truncated      *format.TruncatedRecordError
		writeErr       *format.WriteError
		missingBlock   *certs.MissingBlockError
		unsupportedExt *certs.UnsupportedExtensionError
		unknownParam   *registry.UnknownParameterError
		invalidValue   *codec.InvalidValueError
		sizeMismatch   *imagebin.SizeMismatchError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &schemaErr):
		return ErrCodeSchema
	case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist), errors.Is(err, sql.ErrNoRows):
		return ErrCodeNotFound
	case errors.As(err, &formatErr):
		return ErrCodeFormat
	case errors.As(err, &truncated):
		return ErrCodeTruncated
	case errors.As(err, &writeErr):
		return ErrCodeWrite
	case errors.As(err, &missingBlock), errors.As(err, &unsupportedExt):
		return ErrCodeCert
	case errors.As(err, &unknownParam), errors.As(err, &invalidValue):
		return ErrCodeParam
	case errors.As(err, &sizeMismatch), errors.Is(err, imagebin.ErrShortHeader):
		return ErrCodeImage
	default:
		return ErrCodeGeneric
	}
}

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// IsJSON reports whether JSON output was requested.
func (f *OutputFormatter) IsJSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.IsJSON() {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Failure outputs a result that carries data alongside an error, such as a
// list of violations.
func (f *OutputFormatter) Failure(code, message string, data any) error {
	return f.encode(CLIResponse{
		Status: "error",
		Data:   data,
		Error:  &CLIError{Code: code, Message: message},
	})
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.IsJSON() {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns it as an ExitError with the given code.
func (f *OutputFormatter) Fail(exitCode int, message string, err error) error {
	_ = f.Error(ErrorCode(err), fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(exitCode, message, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
