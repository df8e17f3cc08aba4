package compiler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shinji-kodama/vmcalc/internal/lexer"
)

// initialChunkSize is the starting capacity of the bytecode buffer. It
// holds roughly ten number literals before the first reallocation.
const initialChunkSize = 100

var (
	// ErrUnterminatedGroup is returned when a '(' has no matching ')'.
	ErrUnterminatedGroup = errors.New("unterminated group")

	// ErrMissingExpression is returned when an operand is required but
	// the input has ended, as in "1 +".
	ErrMissingExpression = errors.New("missing expression")

	// ErrMissingFunctionParen is returned when a function name is not
	// followed by '(' or its argument list is not closed by ')'.
	ErrMissingFunctionParen = errors.New("missing parenthesis in function call")

	// ErrMissingCommaInFunctionCall is returned when a multi-argument
	// function call lacks a ',' between arguments.
	ErrMissingCommaInFunctionCall = errors.New("missing comma in function call")
)

// LexerError wraps a scanning failure so callers can tell it apart from
// a parse failure while still reaching the lexer's error with errors.As.
type LexerError struct {
	Err error
}

func (e *LexerError) Error() string {
	return fmt.Sprintf("lexer: %v", e.Err)
}

func (e *LexerError) Unwrap() error {
	return e.Err
}

// InvalidNumberError reports a literal the lexer accepted but that does
// not convert to a finite float64, such as "1e" or "1e999".
type InvalidNumberError struct {
	Literal string
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("invalid number %q", e.Literal)
}

// InvalidTokenBeforeError reports a token that cannot start an operand.
// Current is the token that followed it, if any.
type InvalidTokenBeforeError struct {
	Prev       string
	Current    string
	HasCurrent bool
}

func (e *InvalidTokenBeforeError) Error() string {
	if e.HasCurrent {
		return fmt.Sprintf("unexpected %q before %q", e.Prev, e.Current)
	}
	return fmt.Sprintf("unexpected %q at end of input", e.Prev)
}

// InvalidTokenError reports a token in a position where no operator or
// closing token is allowed.
type InvalidTokenError struct {
	Token string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("unexpected token %q", e.Token)
}

// Compiler turns tokens into a bytecode chunk. A Compiler can be reused:
// each Compile starts from an empty chunk. It is not safe for concurrent use.
type Compiler struct {
	prev  *lexer.Token
	cur   *lexer.Token
	chunk []byte
}

// New returns a Compiler with a preallocated chunk.
func New() *Compiler {
	return &Compiler{chunk: make([]byte, 0, initialChunkSize)}
}

// Opcodes returns the chunk produced by the last Compile. The slice is
// owned by the Compiler and is overwritten by the next Compile or Reset.
func (c *Compiler) Opcodes() []byte {
	return c.chunk
}

// Reset clears the chunk and parser state while keeping the buffer.
func (c *Compiler) Reset() {
	c.chunk = c.chunk[:0]
	c.prev = nil
	c.cur = nil
}

// Compile reads every token from s and emits bytecode for the single
// expression they form. Empty input compiles to an empty chunk.
func (c *Compiler) Compile(s lexer.Scanner) error {
	c.Reset()
	if err := c.advance(s); err != nil {
		return err
	}
	if c.cur == nil {
		return nil
	}
	if err := c.expression(s, lexer.PriorityTerm); err != nil {
		return err
	}
	if c.cur != nil {
		return &InvalidTokenError{Token: c.cur.String()}
	}
	return nil
}

// CompileSource is shorthand for compiling src with a fresh lexer.
func (c *Compiler) CompileSource(src []byte) error {
	return c.Compile(lexer.New(src))
}

func (c *Compiler) advance(s lexer.Scanner) error {
	c.prev = c.cur
	tok, err := s.Scan()
	if err != nil {
		c.cur = nil
		if errors.Is(err, lexer.ErrEOF) {
			return nil
		}
		return &LexerError{Err: err}
	}
	c.cur = &tok
	return nil
}

func (c *Compiler) consume(s lexer.Scanner, kind lexer.Kind, err error) error {
	if c.cur == nil || c.cur.Kind != kind {
		return err
	}
	return c.advance(s)
}

func (c *Compiler) expression(s lexer.Scanner, priority lexer.Priority) error {
	if err := c.advance(s); err != nil {
		return err
	}
	if err := c.prefix(s); err != nil {
		return err
	}

	for c.cur != nil && c.cur.Priority() >= priority {
		if err := c.advance(s); err != nil {
			return err
		}
		switch c.prev.Kind {
		case lexer.Plus, lexer.Minus, lexer.Mult, lexer.Div:
			if err := c.binary(s, *c.prev); err != nil {
				return err
			}
		default:
			return &InvalidTokenError{Token: c.prev.String()}
		}
	}
	return nil
}

func (c *Compiler) prefix(s lexer.Scanner) error {
	if c.prev == nil {
		return ErrMissingExpression
	}

	switch tok := *c.prev; tok.Kind {
	case lexer.Minus:
		return c.unary(s)
	case lexer.Number:
		return c.number(tok.Lexeme)
	case lexer.LeftParen:
		return c.group(s)
	case lexer.Func:
		return c.call(s, tok.Func)
	case lexer.Ans:
		c.emit(OpAns)
		return nil
	default:
		e := &InvalidTokenBeforeError{Prev: tok.String()}
		if c.cur != nil {
			e.Current = c.cur.String()
			e.HasCurrent = true
		}
		return e
	}
}

func (c *Compiler) binary(s lexer.Scanner, op lexer.Token) error {
	if err := c.expression(s, op.Priority().Next()); err != nil {
		return err
	}
	switch op.Kind {
	case lexer.Plus:
		c.emit(OpPlus)
	case lexer.Minus:
		c.emit(OpMinus)
	case lexer.Mult:
		c.emit(OpMult)
	case lexer.Div:
		c.emit(OpDiv)
	default:
		return &InvalidTokenError{Token: op.String()}
	}
	return nil
}

func (c *Compiler) unary(s lexer.Scanner) error {
	if err := c.expression(s, lexer.PriorityUnary); err != nil {
		return err
	}
	c.emit(OpNegate)
	return nil
}

func (c *Compiler) group(s lexer.Scanner) error {
	if err := c.expression(s, lexer.PriorityTerm); err != nil {
		return err
	}
	return c.consume(s, lexer.RightParen, ErrUnterminatedGroup)
}

func (c *Compiler) call(s lexer.Scanner, f lexer.FuncType) error {
	if err := c.consume(s, lexer.LeftParen, ErrMissingFunctionParen); err != nil {
		return err
	}
	for i := 0; i < f.Arity(); i++ {
		if i > 0 {
			if err := c.consume(s, lexer.Comma, ErrMissingCommaInFunctionCall); err != nil {
				return err
			}
		}
		if err := c.expression(s, lexer.PriorityTerm); err != nil {
			return err
		}
	}
	if err := c.consume(s, lexer.RightParen, ErrMissingFunctionParen); err != nil {
		return err
	}
	c.chunk = append(c.chunk, byte(OpFunc), byte(f))
	return nil
}

func (c *Compiler) number(lit []byte) error {
	n, err := strconv.ParseFloat(string(lit), 64)
	if err != nil {
		return &InvalidNumberError{Literal: string(lit)}
	}
	c.chunk = AppendNumber(c.chunk, n)
	return nil
}

func (c *Compiler) emit(op Op) {
	c.chunk = append(c.chunk, byte(op))
}
