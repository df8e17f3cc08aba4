// Package vm executes calculator bytecode on a float64 stack.
//
// The machine trusts nothing about its input: malformed chunks produce
// errors instead of panics, so bytecode from any source can be run.
package vm

import (
	"errors"
	"fmt"
	"math"

	"github.com/shinji-kodama/vmcalc/internal/compiler"
	"github.com/shinji-kodama/vmcalc/internal/lexer"
)

const stackInitialCapacity = 256

var (
	ErrDivisionByZero = errors.New("division by zero")

	// ErrEmptyStack is returned when an instruction needs more operands
	// than the stack holds, including running an empty chunk.
	ErrEmptyStack = errors.New("empty stack")

	// ErrNoAnswer is returned by ANS when no previous answer is stored.
	ErrNoAnswer = errors.New("no previous answer")
)

// DomainError reports a function applied outside its domain, detected by
// a NaN or infinite result.
type DomainError struct {
	Func lexer.FuncType
	Args []float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: argument out of domain %v", e.Func, e.Args)
}

// VirtualMachine runs chunks produced by the compiler. The stack buffer is
// reused between runs. It is not safe for concurrent use.
type VirtualMachine struct {
	stack []float64

	ans    float64
	hasAns bool
}

// New returns a VirtualMachine with no stored answer.
func New() *VirtualMachine {
	return &VirtualMachine{stack: make([]float64, 0, stackInitialCapacity)}
}

// Reset clears the stack and replaces the stored answer. A nil ans
// forgets any previous answer.
func (m *VirtualMachine) Reset(ans *float64) {
	m.stack = m.stack[:0]
	if ans != nil {
		m.ans, m.hasAns = *ans, true
	} else {
		m.ans, m.hasAns = 0, false
	}
}

// Answer returns the stored answer, if any.
func (m *VirtualMachine) Answer() (float64, bool) {
	return m.ans, m.hasAns
}

// Interpret runs opcodes from the beginning and returns the value left on
// top of the stack.
func (m *VirtualMachine) Interpret(opcodes []byte) (float64, error) {
	m.stack = m.stack[:0]

	for ip := 0; ip < len(opcodes); {
		op, err := compiler.ParseOp(opcodes[ip], ip)
		if err != nil {
			return 0, err
		}
		at := ip
		ip++

		switch op {
		case compiler.OpNumber:
			if ip+compiler.NumberWidth > len(opcodes) {
				return 0, fmt.Errorf("number at offset %d: %w", at, compiler.ErrTruncatedChunk)
			}
			m.push(compiler.DecodeNumber(opcodes[ip : ip+compiler.NumberWidth]))
			ip += compiler.NumberWidth
		case compiler.OpNegate:
			a, err := m.pop()
			if err != nil {
				return 0, err
			}
			m.push(-a)
		case compiler.OpPlus, compiler.OpMinus, compiler.OpMult, compiler.OpDiv:
			if err := m.binary(op); err != nil {
				return 0, err
			}
		case compiler.OpFunc:
			if ip >= len(opcodes) {
				return 0, fmt.Errorf("function at offset %d: %w", at, compiler.ErrTruncatedChunk)
			}
			f := lexer.FuncType(opcodes[ip])
			ip++
			if err := m.call(f); err != nil {
				return 0, err
			}
		case compiler.OpAns:
			if !m.hasAns {
				return 0, ErrNoAnswer
			}
			m.push(m.ans)
		}
	}

	return m.pop()
}

func (m *VirtualMachine) push(v float64) {
	m.stack = append(m.stack, v)
}

func (m *VirtualMachine) pop() (float64, error) {
	n := len(m.stack)
	if n == 0 {
		return 0, ErrEmptyStack
	}
	v := m.stack[n-1]
	m.stack = m.stack[:n-1]
	return v, nil
}

func (m *VirtualMachine) binary(op compiler.Op) error {
	a, err := m.pop()
	if err != nil {
		return err
	}
	b, err := m.pop()
	if err != nil {
		return err
	}

	switch op {
	case compiler.OpPlus:
		m.push(b + a)
	case compiler.OpMinus:
		m.push(b - a)
	case compiler.OpMult:
		m.push(b * a)
	case compiler.OpDiv:
		if a == 0 {
			return ErrDivisionByZero
		}
		m.push(b / a)
	}
	return nil
}

// call pops the function's arguments (last argument on top) and pushes
// its result.
func (m *VirtualMachine) call(f lexer.FuncType) error {
	if !f.IsValid() {
		return fmt.Errorf("unknown function %d", byte(f))
	}

	args := make([]float64, f.Arity())
	for i := len(args) - 1; i >= 0; i-- {
		v, err := m.pop()
		if err != nil {
			return err
		}
		args[i] = v
	}

	var r float64
	switch f {
	case lexer.Sqrt:
		r = math.Sqrt(args[0])
	case lexer.Log:
		r = math.Log(args[0])
	case lexer.Sin:
		r = math.Sin(args[0])
	case lexer.Cos:
		r = math.Cos(args[0])
	case lexer.Pow:
		r = math.Pow(args[0], args[1])
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return &DomainError{Func: f, Args: args}
	}
	m.push(r)
	return nil
}
