package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watcher calls OnChange after files matching Patterns in Dir are created or
// written. Bursts of events collapse into one call once Debounce passes
// without further events.
type Watcher struct {
	Dir      string
	Patterns []string
	Debounce time.Duration
	Logger   *slog.Logger
	// OnChange runs on the watcher goroutine; events arriving meanwhile are
	// coalesced into the next call.
	OnChange func(ctx context.Context, changed []string)
}

// Matches reports whether a file name matches one of the watched patterns.
func (w *Watcher) Matches(name string) bool {
	base := filepath.Base(name)
	for _, p := range w.Patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.Dir, err)
	}
	logger.Debug("watching data directory", "dir", w.Dir, "patterns", w.Patterns)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !w.Matches(event.Name) {
				continue
			}
			logger.Debug("source file changed", "file", event.Name, "op", event.Op.String())
			pending[event.Name] = true
			timer.Reset(debounce)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			pending = map[string]bool{}
			if w.OnChange != nil {
				w.OnChange(ctx, changed)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
