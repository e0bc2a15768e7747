// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is not positive.
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrInvalidPattern is returned by New for a malformed glob.
	ErrInvalidPattern = errors.New("invalid watch pattern")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watcher already running")
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Dir is the directory tree to watch; empty means the working directory.
		Dir string
		// Patterns are doublestar globs, relative to Dir, selecting the files
		// that trigger OnChange. Empty selects every non-ignored file.
		Patterns []string
		// Ignore adds to the built-in ignore patterns.
		Ignore []string
		// Debounce is the quiet period after the last event before OnChange fires.
		Debounce time.Duration
		// OnChange receives the sorted, de-duplicated changed paths relative
		// to Dir. An error is reported on Stderr and watching continues.
		OnChange func(ctx context.Context, changed []string) error
		// Stderr receives non-fatal diagnostics; nil means os.Stderr.
		Stderr io.Writer
	}

	// Watcher monitors a directory tree. Run may be called once.
	Watcher struct {
		cfg      Config
		dir      string
		filter   *filter
		fsw      *fsnotify.Watcher
		debounce time.Duration
		stderr   io.Writer
		started  atomic.Bool
	}
)

// New validates cfg and registers the directory tree with fsnotify.
func New(cfg Config) (*Watcher, error) {
	flt, err := newFilter(cfg.Patterns, cfg.Ignore)
	if err != nil {
		return nil, err
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve watch directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		dir:      dir,
		filter:   flt,
		fsw:      fsw,
		debounce: cfg.Debounce,
		stderr:   cfg.Stderr,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.stderr == nil {
		w.stderr = os.Stderr
	}

	if err := w.addTree(dir); err != nil {
		_ = fsw.Close() // best-effort cleanup on error path
		return nil, err
	}
	return w, nil
}

// Dir returns the absolute directory being watched.
func (w *Watcher) Dir() string { return w.dir }

// Run processes events until ctx is cancelled, which returns nil. Event
// queue overflows are reported and tolerated; other watcher errors end Run.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			slog.Debug("closing file watcher failed", "error", err)
		}
	}()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("file watcher closed unexpectedly")
			}
			rel, err := filepath.Rel(w.dir, evt.Name)
			if err != nil {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name, rel)
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			if !w.filter.matches(rel) {
				continue
			}
			pending[filepath.ToSlash(rel)] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			slog.Debug("files changed", "paths", changed)
			if w.cfg.OnChange != nil {
				if err := w.cfg.OnChange(ctx, changed); err != nil && ctx.Err() == nil {
					fmt.Fprintf(w.stderr, "watch: %v\n", err)
				}
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("file watcher closed unexpectedly")
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				fmt.Fprintf(w.stderr, "watch: %v; some changes may have been missed\n", err)
				continue
			}
			return fmt.Errorf("file watcher failed: %w", err)
		}
	}
}

// addTree registers root and every non-ignored directory below it.
// Unreadable directories are reported and skipped.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			fmt.Fprintf(w.stderr, "watch: skipping %s: %v\n", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.dir, path)
		if relErr == nil && rel != "." && w.filter.ignored(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// maybeAddDir extends the watch to a directory created after startup.
func (w *Watcher) maybeAddDir(path, rel string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.filter.ignored(rel) {
		return
	}
	if err := w.addTree(path); err != nil {
		fmt.Fprintf(w.stderr, "watch: %v\n", err)
	}
}
