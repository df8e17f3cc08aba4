// Package cli — repl.go implements the "vmcalc repl" command, which is
// also what the root command runs when given no arguments.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/vmcalc/internal/model"
	"github.com/shinji-kodama/vmcalc/internal/repl"
)

// NewREPLCommand creates the "repl" cobra command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive prompt",
		Long: `Read expressions line by line and print each result.

The result of every successful line is available to the next one as ans.
Type exit or quit, or send EOF, to leave.

Examples:
  vmcalc repl
  echo "2 * 21" | vmcalc repl`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd)
		},
	}
}

// runREPL runs the line-oriented REPL on the command's streams.
func runREPL(cmd *cobra.Command) error {
	stats, err := repl.Run(cmd.Context(), repl.Options{
		Prompt:    cfg.Prompt,
		Precision: cfg.Precision,
		Stdin:     cmd.InOrStdin(),
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
	})
	VerboseLog("REPL finished: %d evaluated, %d failed", stats.Evaluated, stats.Failed)

	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return nil
	default:
		return model.WrapCLIError(model.ExitGeneralError, "failed to read input", err)
	}
}
