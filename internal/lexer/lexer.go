package lexer

import (
	"errors"
	"fmt"
)

// ErrEOF is returned by Scan once the input is exhausted. It is not a
// failure: the compiler treats it as the end of the token stream.
var ErrEOF = errors.New("end of input")

// InvalidCharError reports a byte that cannot start any token.
type InvalidCharError struct {
	Char byte
	Pos  int
}

func (e *InvalidCharError) Error() string {
	return fmt.Sprintf("invalid character %q at offset %d", e.Char, e.Pos)
}

// InvalidNumberFormatError reports a malformed number literal. Char is the
// byte at which the literal stopped making sense.
type InvalidNumberFormatError struct {
	Char byte
	Pos  int
}

func (e *InvalidNumberFormatError) Error() string {
	return fmt.Sprintf("invalid number format near %q at offset %d", e.Char, e.Pos)
}

// UnknownIdentifierError reports a word that is neither a function nor ans.
type UnknownIdentifierError struct {
	Name string
	Pos  int
}

func (e *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("unknown identifier %q at offset %d", e.Name, e.Pos)
}

// Scanner produces tokens one at a time. Scan returns ErrEOF when there
// are no more tokens.
type Scanner interface {
	Scan() (Token, error)
}

// Lexer scans a byte slice. It is not safe for concurrent use.
type Lexer struct {
	src []byte
	pos int
}

// New creates a Lexer over src. The slice is not copied.
func New(src []byte) *Lexer {
	return &Lexer{src: src}
}

// Scan returns the next token in the input.
func (l *Lexer) Scan() (Token, error) {
	l.skipWhitespace()
	c, ok := l.peek()
	if !ok {
		return Token{}, ErrEOF
	}

	switch {
	case isDigit(c):
		return l.number()
	case isLetter(c):
		return l.identifier()
	}

	switch c {
	case '(':
		return l.single(LeftParen), nil
	case ')':
		return l.single(RightParen), nil
	case '+':
		return l.single(Plus), nil
	case '-':
		return l.single(Minus), nil
	case '*':
		return l.single(Mult), nil
	case '/':
		return l.single(Div), nil
	case ',':
		return l.single(Comma), nil
	}
	return Token{}, &InvalidCharError{Char: c, Pos: l.pos}
}

// Offset returns the byte offset of the next unread input.
func (l *Lexer) Offset() int {
	return l.pos
}

func (l *Lexer) peek() (byte, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *Lexer) single(k Kind) Token {
	l.pos++
	return Token{Kind: k}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
}

// number consumes a literal starting at the current position. The first
// byte is known to be a digit.
//
// A '.' may appear once and never after the exponent; 'e' may appear once
// right after a digit or '.'; '-' is part of the literal only directly
// after 'e' and ends it anywhere else. A '.' or 'e' followed by any other
// character is an error. At the end of input a trailing '.' is accepted
// ("1." is 1) and a trailing 'e' is left for the compiler, which fails to
// convert it.
func (l *Lexer) number() (Token, error) {
	begin := l.pos
	var dot, exponent bool
	var prev byte

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '.':
			if dot || exponent {
				return Token{}, &InvalidNumberFormatError{Char: c, Pos: l.pos}
			}
			dot = true
		case c == 'e':
			if exponent || (prev != '.' && !isDigit(prev)) {
				return Token{}, &InvalidNumberFormatError{Char: c, Pos: l.pos}
			}
			exponent = true
		case c == '-' && prev == 'e':
		case isDigit(c):
		default:
			if prev == 'e' || prev == '.' {
				return Token{}, &InvalidNumberFormatError{Char: c, Pos: l.pos}
			}
			return Token{Kind: Number, Lexeme: l.src[begin:l.pos]}, nil
		}
		prev = c
		l.pos++
	}
	return Token{Kind: Number, Lexeme: l.src[begin:l.pos]}, nil
}

func (l *Lexer) identifier() (Token, error) {
	begin := l.pos
	for l.pos < len(l.src) && isLetter(l.src[l.pos]) {
		l.pos++
	}
	name := string(l.src[begin:l.pos])
	if name == "ans" {
		return Token{Kind: Ans}, nil
	}
	if f, ok := funcNames[name]; ok {
		return Token{Kind: Func, Func: f}, nil
	}
	return Token{}, &UnknownIdentifierError{Name: name, Pos: begin}
}

// Tokenize scans src to the end and returns every token. It stops at the
// first error other than ErrEOF.
func Tokenize(src []byte) ([]Token, error) {
	l := New(src)
	var tokens []Token
	for {
		t, err := l.Scan()
		if errors.Is(err, ErrEOF) {
			return tokens, nil
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, t)
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
