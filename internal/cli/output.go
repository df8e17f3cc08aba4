// Package cli — output.go holds the result formatting and error mapping
// shared by the eval, run and root commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/vmcalc/internal/calc"
	"github.com/shinji-kodama/vmcalc/internal/model"
	"github.com/shinji-kodama/vmcalc/internal/repl"
)

// argsSource is the Result.Source for expressions given on the command line.
const argsSource = "<args>"

// newResult converts an evaluation outcome into the structured form used
// for JSON and YAML output.
func newResult(source string, v float64, err error) model.Result {
	r := model.Result{Source: source}
	if err != nil {
		r.Error = err.Error()
		r.Stage = string(calc.StageOf(err))
		return r
	}
	r.Value = v
	return r
}

// exitCodeFor maps an evaluation error to the process exit code.
func exitCodeFor(err error) model.ExitCode {
	switch {
	case err == nil:
		return model.ExitSuccess
	case errors.Is(err, fs.ErrNotExist):
		return model.ExitFileNotFound
	}
	switch calc.StageOf(err) {
	case calc.StageCompile:
		return model.ExitCompileError
	case calc.StageRuntime:
		return model.ExitRuntimeError
	default:
		return model.ExitGeneralError
	}
}

// evalError wraps a failed evaluation of source in a CLIError carrying
// the matching exit code.
func evalError(source string, err error) *model.CLIError {
	if errors.Is(err, fs.ErrNotExist) {
		return model.WrapCLIError(model.ExitFileNotFound,
			fmt.Sprintf("file not found: %s", source), err)
	}
	return model.WrapCLIError(exitCodeFor(err),
		fmt.Sprintf("failed to evaluate %s", source), err)
}

// writeStructured writes v as indented JSON or as YAML. Text output is
// handled by each command.
func writeStructured(w io.Writer, format model.OutputFormat, v interface{}) error {
	switch format {
	case model.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	default:
		// MarshalIndent produces human-readable JSON with 2-space indentation.
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}

// resultsDocument is the top-level object for multi-result output.
type resultsDocument struct {
	Results []model.Result `json:"results" yaml:"results"`
}

// writeResultsText prints one line per result: "path: value" on success
// and "path: <message>" on failure.
func writeResultsText(w io.Writer, results []model.Result, errs []error, precision int) {
	for i, r := range results {
		if r.OK() {
			fmt.Fprintf(w, "%s: %s\n", r.Source, model.FormatValue(r.Value, precision))
			continue
		}
		msg := r.Error
		if errs[i] != nil {
			msg = repl.FormatError(errs[i])
		}
		fmt.Fprintf(w, "%s: %s\n", r.Source, msg)
	}
}
