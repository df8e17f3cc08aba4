// Package cli — disasm.go implements the "vmcalc disasm" command.
//
// disasm compiles an expression without running it and prints the
// resulting bytecode, one instruction per line. With --tokens it also
// prints the token stream the compiler consumed.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/vmcalc/internal/calc"
	"github.com/shinji-kodama/vmcalc/internal/compiler"
	"github.com/shinji-kodama/vmcalc/internal/lexer"
	"github.com/shinji-kodama/vmcalc/internal/model"
)

// disasmFlags holds the flag values for the disasm command.
type disasmFlags struct {
	// tokens also prints the lexer output.
	tokens bool
}

// NewDisasmCommand creates the "disasm" cobra command.
func NewDisasmCommand() *cobra.Command {
	flags := &disasmFlags{}

	cmd := &cobra.Command{
		Use:   "disasm <expression...>",
		Short: "Show the bytecode for an expression",
		Long: `Compile an expression and print its bytecode listing without running it.

Each line shows the byte offset, the opcode and its operand, if any.

Examples:
  vmcalc disasm "1 + 2 * 3"
  vmcalc disasm --tokens "pow(2, -ans)"
  vmcalc disasm -- -2`,

		Args: cobra.MinimumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisasm(cmd.OutOrStdout(), strings.TrimSpace(strings.Join(args, " ")), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.tokens, "tokens", false, "Also print the token stream")

	return cmd
}

// disasmJSON is the structured output of the disasm command.
type disasmJSON struct {
	Source       string            `json:"source" yaml:"source"`
	Tokens       []string          `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Bytes        int               `json:"bytes" yaml:"bytes"`
	Instructions []instructionJSON `json:"instructions" yaml:"instructions"`
}

// instructionJSON is one decoded instruction.
type instructionJSON struct {
	Offset  int    `json:"offset" yaml:"offset"`
	Op      string `json:"op" yaml:"op"`
	Operand string `json:"operand,omitempty" yaml:"operand,omitempty"`
}

func runDisasm(w io.Writer, expr string, flags *disasmFlags) error {
	var tokens []lexer.Token
	if flags.tokens {
		var err error
		tokens, err = lexer.Tokenize([]byte(expr))
		if err != nil {
			return model.WrapCLIError(model.ExitCompileError, "failed to tokenize expression", err)
		}
	}

	chunk, err := calc.NewSession().Compile([]byte(expr))
	if err != nil {
		return evalError(argsSource, err)
	}
	VerboseLog("Compiled %q to %d bytes", expr, len(chunk))

	ins, err := compiler.Disassemble(chunk)
	if err != nil {
		// The compiler produced a chunk it cannot decode.
		return model.WrapCLIError(model.ExitGeneralError, "failed to disassemble", err)
	}

	if cfg.Format() != model.FormatText {
		return writeStructured(w, cfg.Format(), buildDisasmJSON(expr, tokens, chunk, ins))
	}

	if flags.tokens {
		fmt.Fprintf(w, "tokens: %s\n", lexer.Join(tokens))
	}
	fmt.Fprint(w, compiler.FormatListing(ins))
	return nil
}

// buildDisasmJSON converts a listing to its structured form.
func buildDisasmJSON(expr string, tokens []lexer.Token, chunk []byte, ins []compiler.Instruction) disasmJSON {
	out := disasmJSON{
		Source: expr,
		Bytes:  len(chunk),
		// Use an empty slice so an empty chunk encodes as [] rather than null.
		Instructions: make([]instructionJSON, 0, len(ins)),
	}
	for _, t := range tokens {
		out.Tokens = append(out.Tokens, t.String())
	}
	for _, in := range ins {
		entry := instructionJSON{Offset: in.Offset, Op: in.Op.String()}
		switch in.Op {
		case compiler.OpNumber:
			entry.Operand = model.FormatValue(in.Value, -1)
		case compiler.OpFunc:
			entry.Operand = in.Func.Name()
		}
		out.Instructions = append(out.Instructions, entry)
	}
	return out
}
