// Package cli — eval.go implements the "vmcalc eval" command and the
// root command's file mode.
//
// eval joins its arguments with spaces and evaluates them as a single
// expression, so shell-split input such as `vmcalc eval 1 + 2` works
// without quoting.
//
// Expressions may start with unary minus. ExpressionArgs rewrites such
// arguments before cobra parses flags so "-1 + 2" is not read as the
// shorthand flag -1.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/vmcalc/internal/calc"
	"github.com/shinji-kodama/vmcalc/internal/lexer"
	"github.com/shinji-kodama/vmcalc/internal/model"
)

// expressionCommands take an expression as their positional arguments.
var expressionCommands = map[string]bool{
	"eval":   true,
	"disasm": true,
}

// ExpressionArgs prepares command-line arguments for the root command.
// After an eval or disasm subcommand, every argument that starts with '-'
// but is an expression rather than a flag gets a leading space, which
// the flag parser treats as a positional argument and the lexer skips.
// Arguments after "--" are left alone.
func ExpressionArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)

	start := -1
	for i, a := range out {
		if a == "--" {
			return out
		}
		if expressionCommands[a] {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return out
	}

	for i := start; i < len(out); i++ {
		if out[i] == "--" {
			break
		}
		if isNegativeExpression(out[i]) {
			out[i] = " " + out[i]
		}
	}
	return out
}

// isNegativeExpression reports whether a is an expression beginning with
// unary minus. "-1", "-(2)", "-.5", "- 3" and "-sqrt(4)" are expressions;
// "-v", "-o" and "--json" are flags.
func isNegativeExpression(a string) bool {
	if len(a) < 2 || a[0] != '-' || a[1] == '-' {
		return false
	}
	switch c := a[1]; {
	case c >= '0' && c <= '9', c == '(', c == '.', c == ' ':
		return true
	}
	// A letter: only an expression if it lexes, e.g. "-ans" or "-cos(0)".
	_, err := lexer.Tokenize([]byte(a))
	return err == nil
}

// NewEvalCommand creates the "eval" cobra command.
func NewEvalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <expression...>",
		Short: "Evaluate an expression",
		Long: `Evaluate an expression given on the command line and print the result.

An expression may start with unary minus; "vmcalc eval -- -1 + 2" also
works when the expression would otherwise look like a flag.

Examples:
  vmcalc eval "1 + 2 * 3"
  vmcalc eval 'pow(2, 10) / 4'
  vmcalc eval "-1 + 2"
  vmcalc eval --output json "sqrt(2)"`,

		Args: cobra.MinimumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, strings.TrimSpace(strings.Join(args, " ")))
		},
	}
}

// runEval evaluates expr and prints the result in the selected format.
func runEval(cmd *cobra.Command, expr string) error {
	VerboseLog("Evaluating %q", expr)

	v, err := calc.Evaluate([]byte(expr))
	if err := printSingle(cmd, newResult(argsSource, v, err), "%s\n"); err != nil {
		return err
	}
	if err != nil {
		return evalError(argsSource, err)
	}
	return nil
}

// runFile evaluates the whole content of path as one expression.
func runFile(cmd *cobra.Command, path string) error {
	VerboseLog("Evaluating file %s", path)

	fr := calc.EvalFile(path)
	if fr.Err != nil && calc.StageOf(fr.Err) == "" {
		// The file could not be read; there is no result to print.
		return evalError(path, fr.Err)
	}
	if err := printSingle(cmd, newResult(path, fr.Value, fr.Err), "Result of computation: %s\n"); err != nil {
		return err
	}
	if fr.Err != nil {
		return evalError(path, fr.Err)
	}
	return nil
}

// printSingle writes one result. In text mode only successful values are
// printed, using textFormat; failures are reported by the caller's error.
func printSingle(cmd *cobra.Command, r model.Result, textFormat string) error {
	w := cmd.OutOrStdout()
	if cfg.Format() != model.FormatText {
		return writeStructured(w, cfg.Format(), r)
	}
	if r.OK() {
		fmt.Fprintf(w, textFormat, model.FormatValue(r.Value, cfg.Precision))
	}
	return nil
}
