package model

import (
	"fmt"
	"strconv"
	"strings"
)

// OutputFormat selects how command results are printed.
type OutputFormat string

const (
	// FormatText is human-readable output, one line per result.
	FormatText OutputFormat = "text"

	// FormatJSON is indented JSON, for scripts and other tools.
	FormatJSON OutputFormat = "json"

	// FormatYAML is YAML, matching the configuration file syntax.
	FormatYAML OutputFormat = "yaml"
)

// String returns the string representation of OutputFormat.
func (f OutputFormat) String() string {
	return string(f)
}

// IsValid checks whether the OutputFormat value is one of the
// predefined formats.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// ParseOutputFormat converts a string to an OutputFormat.
// Returns an error if the string does not match any valid format.
func ParseOutputFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(s))
	if !format.IsValid() {
		return "", fmt.Errorf("invalid output format: %q (valid: text, json, yaml)", s)
	}
	return format, nil
}

// Result is the outcome of evaluating one expression or file.
//
// Exactly one of Value or Error is meaningful: when Error is empty the
// evaluation succeeded.
type Result struct {
	// Source names where the expression came from: a file path, or
	// "<args>" for expressions passed on the command line.
	Source string `json:"source" yaml:"source"`

	// Value is the computed number.
	Value float64 `json:"value" yaml:"value"`

	// Error is the failure message, empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Stage is "compile" or "runtime" for failed evaluations.
	Stage string `json:"stage,omitempty" yaml:"stage,omitempty"`
}

// OK reports whether the evaluation succeeded.
func (r *Result) OK() bool {
	return r.Error == ""
}

// FormatValue renders v with the given number of digits after the decimal
// point. A negative precision produces the shortest representation that
// round-trips.
func FormatValue(v float64, precision int) string {
	if precision < 0 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitCompileError indicates the expression could not be lexed or parsed.
	ExitCompileError ExitCode = 2

	// ExitRuntimeError indicates the virtual machine failed, for example
	// on division by zero.
	ExitRuntimeError ExitCode = 3

	// ExitFileNotFound indicates a source file could not be read.
	ExitFileNotFound ExitCode = 4

	// ExitConfigError indicates the configuration file is invalid.
	ExitConfigError ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
