package compiler

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shinji-kodama/vmcalc/internal/lexer"
)

// Op is a single bytecode instruction. The numeric values are part of the
// chunk format and must stay stable.
type Op byte

const (
	OpNumber Op = 0
	OpPlus   Op = 1
	OpMinus  Op = 2
	OpMult   Op = 3
	OpDiv    Op = 4
	OpNegate Op = 5
	OpFunc   Op = 6
	OpAns    Op = 7
)

// NumberWidth is the number of operand bytes following OpNumber.
const NumberWidth = 8

// String returns the mnemonic used in disassembly.
func (o Op) String() string {
	switch o {
	case OpNumber:
		return "NUMBER"
	case OpPlus:
		return "PLUS"
	case OpMinus:
		return "MINUS"
	case OpMult:
		return "MULT"
	case OpDiv:
		return "DIV"
	case OpNegate:
		return "NEGATE"
	case OpFunc:
		return "FUNC"
	case OpAns:
		return "ANS"
	default:
		return fmt.Sprintf("OP(%d)", byte(o))
	}
}

// InvalidOpcodeError reports a byte that does not decode to an Op.
type InvalidOpcodeError struct {
	Byte   byte
	Offset int
}

func (e *InvalidOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode %d at offset %d", e.Byte, e.Offset)
}

// ErrTruncatedChunk is returned when a chunk ends in the middle of an
// instruction's operands.
var ErrTruncatedChunk = errors.New("truncated chunk")

// ParseOp decodes b. offset is only used for the error message.
func ParseOp(b byte, offset int) (Op, error) {
	if Op(b) > OpAns {
		return 0, &InvalidOpcodeError{Byte: b, Offset: offset}
	}
	return Op(b), nil
}

// AppendNumber writes an OpNumber instruction for n to chunk.
func AppendNumber(chunk []byte, n float64) []byte {
	chunk = append(chunk, byte(OpNumber))
	return binary.LittleEndian.AppendUint64(chunk, math.Float64bits(n))
}

// DecodeNumber reads the float64 operand stored in b, which must hold at
// least NumberWidth bytes.
func DecodeNumber(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// Instruction is one decoded instruction of a chunk.
type Instruction struct {
	Offset int
	Op     Op
	// Value is the operand of OpNumber.
	Value float64
	// Func is the operand of OpFunc.
	Func lexer.FuncType
}

// String renders the instruction as a disassembly line, e.g.
// "0009 NUMBER 2.5" or "0018 FUNC sqrt".
func (in Instruction) String() string {
	switch in.Op {
	case OpNumber:
		return fmt.Sprintf("%04d %-6s %g", in.Offset, in.Op, in.Value)
	case OpFunc:
		return fmt.Sprintf("%04d %-6s %s", in.Offset, in.Op, in.Func)
	default:
		return fmt.Sprintf("%04d %s", in.Offset, in.Op)
	}
}

// Disassemble decodes a whole chunk.
func Disassemble(chunk []byte) ([]Instruction, error) {
	var out []Instruction
	for i := 0; i < len(chunk); {
		op, err := ParseOp(chunk[i], i)
		if err != nil {
			return out, err
		}
		in := Instruction{Offset: i, Op: op}
		i++
		switch op {
		case OpNumber:
			if i+NumberWidth > len(chunk) {
				return out, fmt.Errorf("number at offset %d: %w", in.Offset, ErrTruncatedChunk)
			}
			in.Value = DecodeNumber(chunk[i : i+NumberWidth])
			i += NumberWidth
		case OpFunc:
			if i >= len(chunk) {
				return out, fmt.Errorf("function at offset %d: %w", in.Offset, ErrTruncatedChunk)
			}
			in.Func = lexer.FuncType(chunk[i])
			i++
		}
		out = append(out, in)
	}
	return out, nil
}

// FormatListing joins disassembled instructions, one per line.
func FormatListing(ins []Instruction) string {
	var sb strings.Builder
	for _, in := range ins {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
