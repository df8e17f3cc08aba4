package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/shinji-kodama/vmcalc/internal/calc"
	"github.com/shinji-kodama/vmcalc/internal/vm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const waitFor = 5 * time.Second

func next(t *testing.T, results <-chan calc.FileResult) calc.FileResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for an evaluation")
		return calc.FileResult{}
	}
}

// waitUntil consumes results until one satisfies ok.
func waitUntil(t *testing.T, results <-chan calc.FileResult, ok func(calc.FileResult) bool) {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case r := <-results:
			if ok(r) {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for the expected evaluation")
		}
	}
}

func TestRun_ReevaluatesOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expr.calc")
	require.NoError(t, os.WriteFile(path, []byte("1 + 1"), 0o644))

	results := make(chan calc.FileResult, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, path, Options{
			Debounce: 20 * time.Millisecond,
			OnResult: func(r calc.FileResult) { results <- r },
		})
	}()

	first := next(t, results)
	require.NoError(t, first.Err)
	assert.Equal(t, 2.0, first.Value)

	// A single save can produce more than one evaluation, for example one
	// after the truncate and one after the write; wait for the one that
	// reflects the new content.
	require.NoError(t, os.WriteFile(path, []byte("1 / 0"), 0o644))
	waitUntil(t, results, func(r calc.FileResult) bool {
		return errors.Is(r.Err, vm.ErrDivisionByZero)
	})

	require.NoError(t, os.WriteFile(path, []byte("6 * 7"), 0o644))
	waitUntil(t, results, func(r calc.FileResult) bool {
		return r.Err == nil && r.Value == 42
	})

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "expr.calc")
	require.NoError(t, os.WriteFile(path, []byte("3"), 0o644))

	results := make(chan calc.FileResult, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, path, Options{
			OnResult: func(r calc.FileResult) { results <- r },
		})
	}()

	next(t, results)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.calc"), []byte("4"), 0o644))

	select {
	case r := <-results:
		t.Fatalf("unexpected evaluation: %+v", r)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestRun_MissingDirectory(t *testing.T) {
	err := Run(context.Background(), filepath.Join(t.TempDir(), "no", "such", "file.calc"), Options{})
	assert.Error(t, err)
}
