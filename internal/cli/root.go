// Package cli implements the cobra-based CLI commands for vmcalc.
//
// Each subcommand (eval, run, repl, tui, watch, disasm) is defined in its
// own file within this package. This file defines the root command that
// serves as the parent for all subcommands, handles global flags, and
// owns the shared logger and configuration.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shinji-kodama/vmcalc/internal/config"
	"github.com/shinji-kodama/vmcalc/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput is shorthand for --output json.
	jsonOutput bool

	// verbose enables debug logging on stderr.
	verbose bool

	// configPath points at an explicit configuration file. When empty the
	// standard locations are searched.
	configPath string

	// outputFlag overrides the configured output format.
	outputFlag string
)

// Shared state initialized by the root command's PersistentPreRunE.
var (
	cfg    = config.Default()
	logger = zap.NewNop()
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// Invoked with a file argument the root command evaluates that file;
// without arguments it starts the interactive REPL.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vmcalc [file]",
		Short: "Bytecode calculator",
		Long: `vmcalc compiles arithmetic expressions to bytecode and runs them on a
small stack virtual machine.

Expressions support + - * /, parentheses, unary minus, the functions
sin, cos, sqrt, log (natural) and pow(base, exponent), and ans, the
result of the previous evaluation.

With a file argument the file is evaluated as a single expression.
Without arguments an interactive prompt is started.`,

		// Args must be set explicitly: with a nil Args cobra rejects a
		// positional argument that is not a subcommand name.
		Args: cobra.MaximumNArgs(1),

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on output format).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runFile(cmd, args[0])
			}
			return runREPL(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (same as --output json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a configuration file (.jsonc or .yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "Output format: text, json, yaml (default from config, else text)")

	rootCmd.AddCommand(NewEvalCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewREPLCommand())
	rootCmd.AddCommand(NewTUICommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewDisasmCommand())

	return rootCmd
}

// setup builds the logger and loads configuration. Flags take precedence
// over the configuration file.
func setup() error {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l

	c, err := config.LoadOrDefault(configPath, workDir())
	if err != nil {
		return err
	}
	if c.Path != "" {
		VerboseLog("Loaded configuration from %s", c.Path)
	}

	switch {
	case outputFlag != "":
		if err := c.SetOutput(outputFlag); err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "invalid --output flag", err)
		}
	case jsonOutput:
		_ = c.SetOutput(model.FormatJSON.String())
	}
	cfg = c
	return nil
}

// getwd is replaced in tests.
var getwd = os.Getwd

// workDir returns the directory searched for local configuration files,
// or "" when it cannot be determined, in which case only the user config
// directory is searched.
func workDir() string {
	wd, err := getwd()
	if err != nil {
		VerboseLog("Cannot determine working directory, skipping local config files: %v", err)
		return ""
	}
	return wd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// The command runs under a context that is cancelled on interrupt, so
// the REPL and watcher shut down cleanly. CLIError values carry their own
// exit codes; other errors exit with code 1.
func Execute(rootCmd *cobra.Command) {
	rootCmd.SetArgs(ExpressionArgs(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		printError(os.Stderr, cliErr.Message, cliErr.Err)
		os.Exit(int(cliErr.Code))
	}

	// Anything else exits with code 1.
	printError(os.Stderr, err.Error(), nil)
	os.Exit(int(model.ExitGeneralError))
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the selected output format.
func printError(w io.Writer, message string, underlying error) {
	if IsJSONOutput() {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode, because stdout is
		// reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// VerboseLog emits a debug message through the shared logger. It is only
// visible with --verbose.
func VerboseLog(format string, args ...interface{}) {
	logger.Sugar().Debugf(format, args...)
}

// IsJSONOutput returns whether JSON output is selected. The flags are
// consulted first so errors from loading the configuration file honor
// --json and --output as well.
func IsJSONOutput() bool {
	if outputFlag != "" {
		if f, err := model.ParseOutputFormat(outputFlag); err == nil {
			return f == model.FormatJSON
		}
	} else if jsonOutput {
		return true
	}
	return cfg.Format() == model.FormatJSON
}
