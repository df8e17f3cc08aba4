// Package cli — tui.go implements the "vmcalc tui" command.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/vmcalc/internal/model"
	"github.com/shinji-kodama/vmcalc/internal/tui"
)

// NewTUICommand creates the "tui" cobra command.
func NewTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the full-screen calculator",
		Long: `Start a full-screen calculator with an input box and a scrolling history.

Keys:
  enter    evaluate the input
  up       recall the last expression
  ctrl+l   clear the history
  esc      quit`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			VerboseLog("Starting TUI (history %d)", cfg.History)
			if err := tui.Run(tui.Options{
				History:   cfg.History,
				Precision: cfg.Precision,
			}); err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "terminal UI failed", err)
			}
			return nil
		},
	}
}
