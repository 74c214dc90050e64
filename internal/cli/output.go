package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/roach88/hpstore/internal/accessor"
	"github.com/roach88/hpstore/internal/storeerr"
	"github.com/roach88/hpstore/internal/timeseries"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Record not found, or scenarios failed
	ExitCommandError = 2 // Command error (bad arguments, parse or I/O failure, etc.)
)

// Error codes used in JSON output for failures that are not store errors.
const (
	ErrCodeUsage     = "USAGE"
	ErrCodeNoJournal = "NO_JOURNAL"
	ErrCodeGeneric   = "ERROR"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	reported bool // already written by an OutputFormatter
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
// Returns ExitSuccess for nil and ExitCommandError if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
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
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "NOT_FOUND", "PARSE", "IO", ...
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Number is a float64 that encodes nan and ±inf as the strings the
// time-series file uses for them, since JSON has no literal for either.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(timeseries.FormatValue(v))
	}
	return json.Marshal(v)
}

// Success outputs a successful result in the configured format.
// text is printed in text mode; data is the JSON payload.
func (f *OutputFormatter) Success(data interface{}, text string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, text)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err in the configured format and returns the ExitError the
// command should return. Not-found store errors exit with ExitFailure;
// everything else is a command error.
func (f *OutputFormatter) Fail(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		_ = f.Error(ErrCodeUsage, exitErr.Message, nil)
		exitErr.reported = true
		return exitErr
	}

	code, exit := classify(err)
	var details interface{}
	var se *storeerr.Error
	if errors.As(err, &se) {
		details = errorDetails{Resource: se.Resource, Key: se.Key}
	}
	_ = f.Error(code, err.Error(), details)
	wrapped := WrapExitError(exit, "command failed", err)
	wrapped.reported = true
	return wrapped
}

type errorDetails struct {
	Resource string `json:"resource,omitempty"`
	Key      string `json:"key,omitempty"`
}

// classify maps an error onto a JSON error code and an exit code.
func classify(err error) (string, int) {
	switch {
	case storeerr.IsNotFound(err):
		return string(storeerr.CodeNotFound), ExitFailure
	case errors.Is(err, accessor.ErrNoJournal):
		return ErrCodeNoJournal, ExitCommandError
	}
	if code := storeerr.CodeOf(err); code != "" {
		return string(code), ExitCommandError
	}
	return ErrCodeGeneric, ExitCommandError
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
