// Package model defines the shared value types for the vmcalc CLI.
//
// This package contains pure data structures with no dependencies on the
// rest of the module. It holds the output format selector (OutputFormat),
// the serializable evaluation result (Result), exit codes (ExitCode) and a
// custom error type (CLIError) that carries exit codes for proper OS
// process exit handling.
package model
