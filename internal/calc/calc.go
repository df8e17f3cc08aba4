// Package calc ties the lexer, compiler and virtual machine together.
//
// It is the layer every front end (one-shot CLI, REPL, TUI, file
// watcher) goes through, so they all report errors the same way: a
// *calc.Error whose Stage says whether the expression failed to compile
// or failed while running.
package calc

import (
	"errors"
	"fmt"

	"github.com/shinji-kodama/vmcalc/internal/compiler"
	"github.com/shinji-kodama/vmcalc/internal/lexer"
	"github.com/shinji-kodama/vmcalc/internal/vm"
)

// Stage identifies which half of the pipeline failed.
type Stage string

const (
	StageCompile Stage = "compile"
	StageRuntime Stage = "runtime"
)

// Error is returned by every evaluation entry point in this package.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StageOf returns the stage of a *Error anywhere in err's chain, or ""
// if there is none.
func StageOf(err error) Stage {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// Evaluate compiles and runs src with no previous answer.
func Evaluate(src []byte) (float64, error) {
	return NewSession().Eval(src)
}

// Session evaluates a sequence of expressions, reusing one compiler and
// one virtual machine and remembering the last successful result as ans.
// It is not safe for concurrent use.
type Session struct {
	compiler *compiler.Compiler
	machine  *vm.VirtualMachine
}

// NewSession returns a Session with no stored answer.
func NewSession() *Session {
	return &Session{
		compiler: compiler.New(),
		machine:  vm.New(),
	}
}

// Eval compiles and runs one expression. On success the result becomes
// the new ans. A runtime failure forgets ans; a compile failure leaves it
// untouched because nothing ran.
func (s *Session) Eval(src []byte) (float64, error) {
	defer s.compiler.Reset()

	if err := s.compiler.Compile(lexer.New(src)); err != nil {
		return 0, &Error{Stage: StageCompile, Err: err}
	}

	v, err := s.machine.Interpret(s.compiler.Opcodes())
	if err != nil {
		s.machine.Reset(nil)
		return 0, &Error{Stage: StageRuntime, Err: err}
	}
	s.machine.Reset(&v)
	return v, nil
}

// EvalString is Eval for string input.
func (s *Session) EvalString(src string) (float64, error) {
	return s.Eval([]byte(src))
}

// Compile returns a copy of the bytecode for src without running it.
func (s *Session) Compile(src []byte) ([]byte, error) {
	defer s.compiler.Reset()

	if err := s.compiler.Compile(lexer.New(src)); err != nil {
		return nil, &Error{Stage: StageCompile, Err: err}
	}
	out := make([]byte, len(s.compiler.Opcodes()))
	copy(out, s.compiler.Opcodes())
	return out, nil
}

// Answer returns the previous successful result, if any.
func (s *Session) Answer() (float64, bool) {
	return s.machine.Answer()
}

// SetAnswer seeds ans, for example from a value shown in a UI.
func (s *Session) SetAnswer(v float64) {
	s.machine.Reset(&v)
}
