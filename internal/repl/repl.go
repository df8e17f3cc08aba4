// Package repl implements the line-oriented read-eval-print loop.
//
// Each line is one expression. Results are printed as "$ <value>" and
// become ans for the next line; failures are reported on the error
// writer and the loop continues.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shinji-kodama/vmcalc/internal/calc"
	"github.com/shinji-kodama/vmcalc/internal/model"
)

// Options configures a REPL.
type Options struct {
	// Prompt is written before every line. Empty means no prompt.
	Prompt string

	// Precision is passed to model.FormatValue.
	Precision int

	// MaxLineLength bounds a single input line in bytes. Longer lines
	// are reported as ErrLineTooLong and skipped. Zero means
	// DefaultMaxLineLength.
	MaxLineLength int

	// Stdin, Stdout and Stderr default to nothing; callers must set them.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultMaxLineLength is the line limit used when Options leaves it unset.
const DefaultMaxLineLength = 1 << 20

// ErrLineTooLong is reported for an input line over the length limit.
var ErrLineTooLong = errors.New("line too long")

// Stats summarizes a finished REPL session.
type Stats struct {
	Evaluated int
	Failed    int
}

// quitCommands end the session like EOF does.
var quitCommands = map[string]bool{
	"exit": true,
	"quit": true,
}

// Run reads lines until EOF, a quit command or ctx cancellation. It
// returns ctx.Err() when cancelled and any read error from Stdin;
// evaluation failures are not errors.
//
// Cancellation is observed between lines: a blocked read finishes first.
func Run(ctx context.Context, opts Options) (Stats, error) {
	var stats Stats
	session := calc.NewSession()
	reader := bufio.NewReader(opts.Stdin)
	limit := opts.MaxLineLength
	if limit <= 0 {
		limit = DefaultMaxLineLength
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if opts.Prompt != "" {
			fmt.Fprint(opts.Stdout, opts.Prompt)
		}
		raw, tooLong, err := readLine(reader, limit)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return stats, nil
			}
			return stats, err
		}
		if tooLong {
			stats.Evaluated++
			stats.Failed++
			fmt.Fprintln(opts.Stderr, FormatError(fmt.Errorf("%w (limit %d bytes)", ErrLineTooLong, limit)))
			continue
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if quitCommands[line] {
			return stats, nil
		}

		stats.Evaluated++
		v, err := session.EvalString(line)
		if err != nil {
			stats.Failed++
			fmt.Fprintln(opts.Stderr, FormatError(err))
			continue
		}
		fmt.Fprintf(opts.Stdout, "$ %s\n", model.FormatValue(v, opts.Precision))
	}
}

// readLine returns the next line without its line ending. A line longer
// than limit is consumed entirely and reported with tooLong set.
func readLine(r *bufio.Reader, limit int) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return "", false, err
		}
		if !tooLong {
			if len(buf)+len(chunk) > limit {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

// FormatError renders an evaluation error the way the REPL shows it.
func FormatError(err error) string {
	var e *calc.Error
	if !errors.As(err, &e) {
		return fmt.Sprintf("Error: %v", err)
	}
	if e.Stage == calc.StageCompile {
		return fmt.Sprintf("Compiler error: %v", e.Err)
	}
	return fmt.Sprintf("Virtual machine error: %v", e.Err)
}
