// Package tui is the full-screen terminal calculator.
//
// It is a bubbletea program with a single text input. Enter solves the
// expression, the result is added to a scrolling history and becomes ans
// for the next expression, and the input is cleared for the next one.
package tui
