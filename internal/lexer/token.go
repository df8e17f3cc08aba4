package lexer

import (
	"fmt"
	"strings"
)

// Kind identifies the category of a token.
type Kind int

const (
	// Number is a numeric literal. The literal text is in Token.Lexeme.
	Number Kind = iota
	LeftParen
	RightParen
	Plus
	Minus
	Mult
	Div
	// Comma separates function call arguments.
	Comma
	// Func is a built-in function name. The function is in Token.Func.
	Func
	// Ans refers to the result of the previous evaluation.
	Ans
)

// String returns a short name for the kind, used in debug output.
func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case LeftParen:
		return "left-paren"
	case RightParen:
		return "right-paren"
	case Plus:
		return "plus"
	case Minus:
		return "minus"
	case Mult:
		return "mult"
	case Div:
		return "div"
	case Comma:
		return "comma"
	case Func:
		return "func"
	case Ans:
		return "ans"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FuncType enumerates the built-in functions. The numeric value is the
// operand byte the compiler writes after a Func opcode, so existing values
// must never be renumbered.
type FuncType byte

const (
	Sqrt FuncType = 0
	Log  FuncType = 1
	Sin  FuncType = 2
	Cos  FuncType = 3
	Pow  FuncType = 4
)

// funcNames maps identifiers in source text to their function.
var funcNames = map[string]FuncType{
	"sqrt": Sqrt,
	"log":  Log,
	"sin":  Sin,
	"cos":  Cos,
	"pow":  Pow,
}

// Name returns the identifier used for the function in source text.
func (f FuncType) Name() string {
	switch f {
	case Sqrt:
		return "sqrt"
	case Log:
		return "log"
	case Sin:
		return "sin"
	case Cos:
		return "cos"
	case Pow:
		return "pow"
	default:
		return fmt.Sprintf("func(%d)", byte(f))
	}
}

// String satisfies fmt.Stringer.
func (f FuncType) String() string {
	return f.Name()
}

// Arity returns the number of arguments the function takes.
func (f FuncType) Arity() int {
	if f == Pow {
		return 2
	}
	return 1
}

// IsValid reports whether f is one of the defined functions.
func (f FuncType) IsValid() bool {
	return f <= Pow
}

// ParseFuncType looks up a function by its source identifier.
func ParseFuncType(name string) (FuncType, error) {
	f, ok := funcNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown function %q", name)
	}
	return f, nil
}

// FuncNames returns the identifiers of all built-in functions in
// encoding order.
func FuncNames() []string {
	return []string{Sqrt.Name(), Log.Name(), Sin.Name(), Cos.Name(), Pow.Name()}
}

// Token is a single lexical unit.
type Token struct {
	Kind Kind

	// Lexeme holds the literal text of a Number token. It aliases the
	// source buffer and is nil for every other kind.
	Lexeme []byte

	// Func is set for Func tokens.
	Func FuncType
}

// NumberToken builds a Number token from literal text.
func NumberToken(lit string) Token {
	return Token{Kind: Number, Lexeme: []byte(lit)}
}

// FuncToken builds a Func token.
func FuncToken(f FuncType) Token {
	return Token{Kind: Func, Func: f}
}

// Simple builds a token that carries no payload, such as Plus or LeftParen.
func Simple(k Kind) Token {
	return Token{Kind: k}
}

// Equal reports whether two tokens have the same kind and payload.
func (t Token) Equal(o Token) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Number:
		return string(t.Lexeme) == string(o.Lexeme)
	case Func:
		return t.Func == o.Func
	default:
		return true
	}
}

// String returns the token as it is spelled in source text.
func (t Token) String() string {
	switch t.Kind {
	case Number:
		return string(t.Lexeme)
	case LeftParen:
		return "("
	case RightParen:
		return ")"
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Mult:
		return "*"
	case Div:
		return "/"
	case Comma:
		return ","
	case Func:
		return t.Func.Name()
	case Ans:
		return "ans"
	default:
		return t.Kind.String()
	}
}

// Priority returns the binding power of the token when it appears in
// operator position.
func (t Token) Priority() Priority {
	switch t.Kind {
	case Number, Func, Ans:
		return PriorityNumber
	case LeftParen:
		return PriorityGroup
	case Plus, Minus:
		return PriorityTerm
	case Mult, Div:
		return PriorityFactor
	default:
		return PriorityNull
	}
}

// Join renders a token slice back into source-like text separated by
// single spaces.
func Join(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Priority orders operator binding strength from loosest to tightest.
type Priority int

const (
	PriorityNull Priority = iota
	PriorityNumber
	PriorityTerm
	PriorityFactor
	PriorityUnary
	PriorityGroup
)

// Next returns the next tighter priority. PriorityGroup is the ceiling.
func (p Priority) Next() Priority {
	if p >= PriorityGroup {
		return PriorityGroup
	}
	return p + 1
}
