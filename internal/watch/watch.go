// Package watch reports changes to a set of files, debounced, so that
// editors which write a file in several steps trigger a single reload.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before
// the change callback runs.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches individual files. It watches their parent directories
// because many editors replace files by rename, which drops a direct watch.
type Watcher struct {
	files    map[string]struct{}
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a Watcher for the given files.
func New(files []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	w := &Watcher{
		files:    make(map[string]struct{}, len(files)),
		debounce: debounce,
		logger:   logger,
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		w.files[abs] = struct{}{}
	}
	return w, nil
}

// Run blocks until ctx is cancelled, calling onChange with the sorted set of
// files that changed during each debounce window. Calls never overlap, and
// Run does not return while one is in progress.
func (w *Watcher) Run(ctx context.Context, onChange func(changed []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dirs := make(map[string]struct{})
	for f := range w.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	var (
		mu            sync.Mutex
		pending       = make(map[string]struct{})
		debounceTimer *time.Timer
		running       sync.Mutex
		inflight      sync.WaitGroup
	)
	flush := func() {
		defer inflight.Done()

		mu.Lock()
		changed := make([]string, 0, len(pending))
		for f := range pending {
			changed = append(changed, f)
		}
		clear(pending)
		mu.Unlock()

		if len(changed) == 0 || ctx.Err() != nil {
			return
		}
		sort.Strings(changed)

		running.Lock()
		defer running.Unlock()
		w.logger.Debug("files changed", "files", changed)
		onChange(changed)
	}
	// A timer stopped before firing never runs flush, so its count is
	// released here.
	stop := func() {
		if debounceTimer != nil && debounceTimer.Stop() {
			inflight.Done()
		}
	}
	defer func() {
		mu.Lock()
		stop()
		mu.Unlock()
		inflight.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := w.files[name]; !ok {
				continue
			}

			mu.Lock()
			pending[name] = struct{}{}
			stop()
			inflight.Add(1)
			debounceTimer = time.AfterFunc(w.debounce, flush)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}
