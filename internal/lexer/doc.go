// Package lexer turns calculator source text into tokens.
//
// The lexer works directly on the input bytes and never allocates for
// number literals: a Number token's Lexeme is a sub-slice of the source.
// Callers pull tokens one at a time through the Scanner interface, which
// is also what the compiler depends on, so tests can feed the compiler a
// canned token stream.
//
// Recognized input:
//   - number literals such as 1, 1.25, 3.0e-1 and 2e3
//   - the operators + - * / and the punctuation ( ) ,
//   - the functions sin, cos, sqrt, log and pow
//   - the identifier ans, which refers to the previous result
//
// End of input is reported as ErrEOF rather than as a token.
package lexer
