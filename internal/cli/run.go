// Package cli — run.go implements the "vmcalc run" command.
//
// run evaluates any number of source files concurrently, each as an
// independent expression with no previous answer, and prints one result
// per file in argument order. A failure in one file does not stop the
// others; the exit code reflects the first failing file.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/vmcalc/internal/calc"
	"github.com/shinji-kodama/vmcalc/internal/model"
)

// NewRunCommand creates the "run" cobra command.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file...>",
		Short: "Evaluate expression files",
		Long: `Evaluate one or more files, each containing a single expression.

Files are evaluated concurrently and reported in the order given.

Examples:
  vmcalc run total.calc
  vmcalc run a.calc b.calc c.calc --output yaml`,

		Args: cobra.MinimumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd, args)
		},
	}
}

// runFiles evaluates paths and prints every result before reporting the
// first failure.
func runFiles(cmd *cobra.Command, paths []string) error {
	VerboseLog("Evaluating %d files", len(paths))

	frs, err := calc.EvalFiles(cmd.Context(), paths)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "evaluation interrupted", err)
	}

	results := make([]model.Result, 0, len(frs))
	errs := make([]error, 0, len(frs))
	var firstErr *model.CLIError
	failed := 0
	for _, fr := range frs {
		results = append(results, newResult(fr.Path, fr.Value, fr.Err))
		errs = append(errs, fr.Err)
		if fr.Err != nil {
			failed++
			VerboseLog("%s: %v", fr.Path, fr.Err)
			if firstErr == nil {
				firstErr = evalError(fr.Path, fr.Err)
			}
		}
	}

	w := cmd.OutOrStdout()
	if cfg.Format() == model.FormatText {
		writeResultsText(w, results, errs, cfg.Precision)
	} else if err := writeStructured(w, cfg.Format(), resultsDocument{Results: results}); err != nil {
		return err
	}

	if firstErr != nil {
		return model.WrapCLIError(firstErr.Code,
			fmt.Sprintf("%d of %d files failed", failed, len(frs)), firstErr)
	}
	return nil
}
