package calc

import (
	"context"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of evaluating one source file.
type FileResult struct {
	Path  string
	Value float64

	// Err is a *Error for evaluation failures or the os error when the
	// file could not be read.
	Err error
}

// EvalFile reads path and evaluates its whole content as one expression.
func EvalFile(path string) FileResult {
	src, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	v, err := Evaluate(src)
	return FileResult{Path: path, Value: v, Err: err}
}

// EvalFiles evaluates every file concurrently, each in its own session.
// Results are returned in the order of paths. Per-file failures are
// recorded in the results; the returned error is only set when ctx is
// cancelled before all files were evaluated.
func EvalFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = EvalFile(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
