// Package cli — root_test.go runs the commands end to end through the
// root command with in-memory streams.
package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/vmcalc/internal/model"
)

// execute runs the root command with args, prepared by ExpressionArgs as
// Execute does, and returns stdout, stderr and the command error. The
// user config directory is pointed at an empty temporary directory so a
// real configuration cannot leak in.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(ExpressionArgs(args))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// exitCode extracts the CLIError code, or ExitSuccess for a nil error.
func exitCode(t *testing.T, err error) model.ExitCode {
	t.Helper()
	if err == nil {
		return model.ExitSuccess
	}
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr), "expected CLIError, got %T: %v", err, err)
	return cliErr.Code
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEvalCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantOut  string
		wantCode model.ExitCode
	}{
		{
			name:    "single argument",
			args:    []string{"eval", "1 + 2 * 3"},
			wantOut: "7\n",
		},
		{
			name:    "arguments are joined",
			args:    []string{"eval", "pow(2,", "10)", "/", "4"},
			wantOut: "256\n",
		},
		{
			name:    "functions",
			args:    []string{"eval", "sqrt(16) + cos(0)"},
			wantOut: "5\n",
		},
		{
			name:    "leading unary minus",
			args:    []string{"eval", "-1 + 2"},
			wantOut: "1\n",
		},
		{
			name:    "leading unary minus split by the shell",
			args:    []string{"eval", "-1", "+", "2"},
			wantOut: "1\n",
		},
		{
			name:    "negated group",
			args:    []string{"eval", "-(2 * 3)"},
			wantOut: "-6\n",
		},
		{
			name:    "negated function",
			args:    []string{"eval", "-sqrt(9)"},
			wantOut: "-3\n",
		},
		{
			name:    "minus as its own argument",
			args:    []string{"eval", "-", "1"},
			wantOut: "-1\n",
		},
		{
			name:    "double dash",
			args:    []string{"eval", "--", "-1 + 2"},
			wantOut: "1\n",
		},
		{
			name:    "flag after negative expression",
			args:    []string{"eval", "-4", "-v"},
			wantOut: "-4\n",
		},
		{
			name:     "negated ans",
			args:     []string{"eval", "-ans"},
			wantCode: model.ExitRuntimeError,
		},
		{
			name:     "runtime error",
			args:     []string{"eval", "1 / 0"},
			wantCode: model.ExitRuntimeError,
		},
		{
			name:     "compile error",
			args:     []string{"eval", "1 +"},
			wantCode: model.ExitCompileError,
		},
		{
			name:     "ans without previous result",
			args:     []string{"eval", "ans"},
			wantCode: model.ExitRuntimeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", tt.args...)
			assert.Equal(t, tt.wantCode, exitCode(t, err))
			assert.Equal(t, tt.wantOut, out)
		})
	}
}

func TestEvalCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "", "eval", "--json", "2 * 21")
	require.NoError(t, err)

	var r model.Result
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, model.Result{Source: argsSource, Value: 42}, r)
}

func TestEvalCommand_JSONError(t *testing.T) {
	out, _, err := execute(t, "", "eval", "--output", "json", "sqrt(-1)")
	assert.Equal(t, model.ExitRuntimeError, exitCode(t, err))

	var r model.Result
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "runtime", r.Stage)
	assert.Contains(t, r.Error, "sqrt")
}

func TestEvalCommand_YAML(t *testing.T) {
	out, _, err := execute(t, "", "eval", "-o", "yaml", "1 - 3")
	require.NoError(t, err)
	assert.Contains(t, out, argsSource)
	assert.Contains(t, out, "value: -2")
}

func TestEvalCommand_InvalidOutput(t *testing.T) {
	_, _, err := execute(t, "", "eval", "--output", "xml", "1")
	assert.Equal(t, model.ExitGeneralError, exitCode(t, err))
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("precision from yaml", func(t *testing.T) {
		path := writeFile(t, dir, "vmcalc.yaml", "precision: 2\n")
		out, _, err := execute(t, "", "--config", path, "eval", "2 / 3")
		require.NoError(t, err)
		assert.Equal(t, "0.67\n", out)
	})

	t.Run("output from jsonc", func(t *testing.T) {
		path := writeFile(t, dir, "vmcalc.jsonc", `{
  // scripts read this
  "output": "json",
}`)
		out, _, err := execute(t, "", "--config", path, "eval", "1")
		require.NoError(t, err)
		assert.Contains(t, out, `"value": 1`)
	})

	t.Run("flag overrides file", func(t *testing.T) {
		path := writeFile(t, dir, "json.yaml", "output: json\n")
		out, _, err := execute(t, "", "--config", path, "--output", "text", "eval", "1")
		require.NoError(t, err)
		assert.Equal(t, "1\n", out)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", "colour: blue\n")
		_, _, err := execute(t, "", "--config", path, "eval", "1")
		assert.Equal(t, model.ExitConfigError, exitCode(t, err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "", "--config", filepath.Join(dir, "nope.yaml"), "eval", "1")
		assert.Equal(t, model.ExitConfigError, exitCode(t, err))
	})

	t.Run("invalid file reported as JSON", func(t *testing.T) {
		path := writeFile(t, dir, "bad.jsonc", `{"colour": "blue"}`)
		_, _, err := execute(t, "", "--json", "--config", path, "eval", "1")
		assert.Equal(t, model.ExitConfigError, exitCode(t, err))

		var cliErr *model.CLIError
		require.ErrorAs(t, err, &cliErr)
		var buf bytes.Buffer
		printError(&buf, cliErr.Message, cliErr.Err)

		var doc map[string]map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
		assert.Contains(t, doc["error"]["message"], "bad.jsonc")
		assert.NotEmpty(t, doc["error"]["detail"])
	})
}

// TestExpressionArgs verifies which arguments are protected from the
// flag parser.
func TestExpressionArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "negative number after eval",
			args: []string{"eval", "-1 + 2"},
			want: []string{"eval", " -1 + 2"},
		},
		{
			name: "global flags before the subcommand are untouched",
			args: []string{"--json", "-v", "disasm", "-2", "--tokens"},
			want: []string{"--json", "-v", "disasm", " -2", "--tokens"},
		},
		{
			name: "shorthand flags stay flags",
			args: []string{"eval", "-v", "-o", "json", "1"},
			want: []string{"eval", "-v", "-o", "json", "1"},
		},
		{
			name: "function and ans after minus",
			args: []string{"eval", "-cos(0)", "-ans"},
			want: []string{"eval", " -cos(0)", " -ans"},
		},
		{
			name: "group, fraction and spaced minus",
			args: []string{"eval", "-(1)", "-.5", "- 3"},
			want: []string{"eval", " -(1)", " -.5", " - 3"},
		},
		{
			name: "lone minus is already positional",
			args: []string{"eval", "-", "1"},
			want: []string{"eval", "-", "1"},
		},
		{
			name: "nothing after double dash",
			args: []string{"eval", "--", "-1"},
			want: []string{"eval", "--", "-1"},
		},
		{
			name: "other commands are untouched",
			args: []string{"run", "-1.calc"},
			want: []string{"run", "-1.calc"},
		},
		{
			name: "no arguments",
			args: []string{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := make([]string, len(tt.args))
			copy(args, tt.args)
			assert.Equal(t, tt.want, ExpressionArgs(args))
			assert.Equal(t, tt.args, args, "input must not be modified")
		})
	}
}

func TestRootCommand_File(t *testing.T) {
	dir := t.TempDir()

	t.Run("prints result", func(t *testing.T) {
		path := writeFile(t, dir, "ok.calc", "2 * (3 + 4)\n")
		out, _, err := execute(t, "", path)
		require.NoError(t, err)
		assert.Equal(t, "Result of computation: 14\n", out)
	})

	t.Run("runtime error", func(t *testing.T) {
		path := writeFile(t, dir, "div.calc", "1 / (2 - 2)")
		out, _, err := execute(t, "", path)
		assert.Equal(t, model.ExitRuntimeError, exitCode(t, err))
		assert.Empty(t, out)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "", filepath.Join(dir, "missing.calc"))
		assert.Equal(t, model.ExitFileNotFound, exitCode(t, err))
	})

	t.Run("too many arguments", func(t *testing.T) {
		_, _, err := execute(t, "", "a.calc", "b.calc")
		assert.Error(t, err)
	})
}

func TestRootCommand_REPL(t *testing.T) {
	out, stderr, err := execute(t, "1 + 1\nans * 3\n1 / 0\nexit\n9\n")
	require.NoError(t, err)

	assert.Contains(t, out, "$ 2\n")
	assert.Contains(t, out, "$ 6\n")
	assert.NotContains(t, out, "$ 9")
	assert.Contains(t, stderr, "Virtual machine error: division by zero")
}

func TestREPLCommand(t *testing.T) {
	out, _, err := execute(t, "sqrt(81)\n", "repl")
	require.NoError(t, err)
	assert.Contains(t, out, ">> ")
	assert.Contains(t, out, "$ 9\n")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.calc", "1 + 1")
	b := writeFile(t, dir, "b.calc", "1 +")
	c := writeFile(t, dir, "c.calc", "pow(3, 2)")

	t.Run("text", func(t *testing.T) {
		out, _, err := execute(t, "", "run", a, b, c)
		assert.Equal(t, model.ExitCompileError, exitCode(t, err))

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, a+": 2", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], b+": Compiler error:"), lines[1])
		assert.Equal(t, c+": 9", lines[2])
	})

	t.Run("json keeps argument order", func(t *testing.T) {
		out, _, err := execute(t, "", "run", "--json", c, a)
		require.NoError(t, err)

		var doc resultsDocument
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, []model.Result{
			{Source: c, Value: 9},
			{Source: a, Value: 2},
		}, doc.Results)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "", "run", a, filepath.Join(dir, "missing.calc"))
		assert.Equal(t, model.ExitFileNotFound, exitCode(t, err))
	})
}

func TestDisasmCommand(t *testing.T) {
	t.Run("listing", func(t *testing.T) {
		out, _, err := execute(t, "", "disasm", "1 + 2")
		require.NoError(t, err)
		assert.Equal(t, "0000 NUMBER 1\n0009 NUMBER 2\n0018 PLUS\n", out)
	})

	t.Run("leading unary minus", func(t *testing.T) {
		out, _, err := execute(t, "", "disasm", "-2")
		require.NoError(t, err)
		assert.Equal(t, "0000 NUMBER 2\n0009 NEGATE\n", out)
	})

	t.Run("tokens", func(t *testing.T) {
		out, _, err := execute(t, "", "disasm", "--tokens", "--", "-sqrt(4)")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "tokens: - sqrt ( 4 )\n"), out)
		assert.Contains(t, out, "FUNC   sqrt")
		assert.Contains(t, out, "NEGATE")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "", "disasm", "--json", "ans * 2")
		require.NoError(t, err)

		var doc disasmJSON
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, 11, doc.Bytes)
		assert.Equal(t, []instructionJSON{
			{Offset: 0, Op: "ANS"},
			{Offset: 1, Op: "NUMBER", Operand: "2"},
			{Offset: 10, Op: "MULT"},
		}, doc.Instructions)
	})

	t.Run("compile error", func(t *testing.T) {
		_, _, err := execute(t, "", "disasm", "sqrt 4")
		assert.Equal(t, model.ExitCompileError, exitCode(t, err))
	})
}
