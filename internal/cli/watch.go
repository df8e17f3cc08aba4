// Package cli — watch.go implements the "vmcalc watch" command.
//
// watch evaluates a file, then re-evaluates it every time it is saved,
// until interrupted. Evaluation failures are printed and watching
// continues.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/vmcalc/internal/calc"
	"github.com/shinji-kodama/vmcalc/internal/model"
	"github.com/shinji-kodama/vmcalc/internal/repl"
	"github.com/shinji-kodama/vmcalc/internal/watch"
)

// NewWatchCommand creates the "watch" cobra command.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-evaluate a file whenever it changes",
		Long: `Evaluate a file and print the result again every time the file is saved.

The delay before re-evaluating is taken from watchDebounce in the
configuration file. Press Ctrl+C to stop.

Examples:
  vmcalc watch budget.calc`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0])
		},
	}
}

func runWatch(cmd *cobra.Command, path string) error {
	w := cmd.OutOrStdout()
	VerboseLog("Watching %s (debounce %s)", path, cfg.Debounce())

	err := watch.Run(cmd.Context(), path, watch.Options{
		Debounce: cfg.Debounce(),
		Logger:   logger,
		OnResult: func(fr calc.FileResult) {
			if err := printWatchResult(w, time.Now(), fr); err != nil {
				logger.Sugar().Warnf("failed to print result: %v", err)
			}
		},
	})
	if err != nil {
		return model.WrapCLIError(exitCodeFor(err), fmt.Sprintf("cannot watch %s", path), err)
	}
	return nil
}

// printWatchResult writes one evaluation, prefixed with its time in text
// mode.
func printWatchResult(w io.Writer, at time.Time, fr calc.FileResult) error {
	if cfg.Format() != model.FormatText {
		return writeStructured(w, cfg.Format(), newResult(fr.Path, fr.Value, fr.Err))
	}
	out := model.FormatValue(fr.Value, cfg.Precision)
	if fr.Err != nil {
		out = repl.FormatError(fr.Err)
	}
	_, err := fmt.Fprintf(w, "[%s] %s: %s\n", at.Format("15:04:05"), fr.Path, out)
	return err
}
