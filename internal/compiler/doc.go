// Package compiler translates a token stream into bytecode for the
// calculator virtual machine.
//
// Parsing is precedence climbing driven by lexer.Priority: each call to
// expression handles one prefix form (number, unary minus, group,
// function call, ans) and then folds in binary operators whose priority
// is at least the requested one. Operands are emitted before operators,
// so the resulting chunk is in postfix order and the VM needs nothing
// more than a value stack.
//
// Chunk layout:
//
//	NUMBER b0..b7   push the float64 whose IEEE-754 bits are b0..b7, little-endian
//	PLUS MINUS MULT DIV
//	                pop a, pop b, push b op a
//	NEGATE          pop a, push -a
//	FUNC f          apply built-in function f (see lexer.FuncType) to its arguments
//	ANS             push the previous answer
package compiler
