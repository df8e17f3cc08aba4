// Package watch re-evaluates a source file whenever it changes on disk.
//
// The parent directory is watched rather than the file itself, because
// many editors save by writing a temporary file and renaming it over the
// original, which would silently end a watch placed on the old inode.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/shinji-kodama/vmcalc/internal/calc"
)

// Options configures Run.
type Options struct {
	// Debounce is how long to wait after the last change before
	// evaluating. Editors often emit several events for one save.
	Debounce time.Duration

	// OnResult receives every evaluation, including the initial one.
	// It is called from the watch loop and must not block for long.
	OnResult func(calc.FileResult)

	// Logger receives watcher diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// Run evaluates path once, then again after every debounced change,
// until ctx is cancelled. It returns nil on cancellation and an error
// only if the watch cannot be established.
func Run(ctx context.Context, path string, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	onResult := opts.OnResult
	if onResult == nil {
		onResult = func(calc.FileResult) {}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	dir := filepath.Dir(abs)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Debug("watching", zap.String("file", abs), zap.Duration("debounce", opts.Debounce))

	onResult(calc.EvalFile(path))

	// fire is nil while no evaluation is pending.
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("watch stopped", zap.Error(ctx.Err()))
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			logger.Debug("change detected", zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(opts.Debounce)
			} else {
				timer.Reset(opts.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			onResult(calc.EvalFile(path))
		}
	}
}
