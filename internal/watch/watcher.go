// Package watch re-runs coverage when project sources change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"zest/internal/logging"
)

// SourceDirs are the project directories watched recursively. The project
// root itself is watched without recursion for manifest changes.
var SourceDirs = []string{"src", "programs", "tests"}

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is called with the changed paths once the burst has settled.
// Calls never overlap.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher batches relevant file events and hands them to a ChangeFunc.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	root        string
	onChange    ChangeFunc
	pending     map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats counts what the watcher has seen.
type Stats struct {
	Events        int
	Batches       int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// NewWatcher creates a watcher for the project at root.
func NewWatcher(root string, onChange ChangeFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		root:        root,
		onChange:    onChange,
		pending:     make(map[string]time.Time),
		debounceDur: DefaultDebounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// SetDebounce changes the settle time. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounceDur = d
}

// Start registers the watched directories and begins processing events.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	defer w.mu.Unlock()

	if err := w.watcher.Add(w.root); err != nil {
		return err
	}
	for _, dir := range SourceDirs {
		path := filepath.Join(w.root, dir)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		w.addTree(path)
	}

	w.running = true
	go w.run(ctx)
	return nil
}

// Stop ends event processing and releases the OS watches.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.WatchWarn("error closing watcher: %v", err)
	}
	logging.WatchDebug("stopped")
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) addTree(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			logging.WatchWarn("cannot watch %s: %v", path, err)
			return nil
		}
		logging.WatchDebug("watching %s", path)
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatchWarn("watch error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	if event.Op&fsnotify.Create != 0 && w.inSourceTree(event.Name) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
			w.addTree(event.Name)
			return
		}
	}
	if !Relevant(event.Name) {
		return
	}

	logging.WatchDebug("%s %s", event.Op, event.Name)
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.stats.Events++
	w.stats.LastEventPath = event.Name
	w.stats.LastEventTime = time.Now()
	w.mu.Unlock()
}

// flush fires onChange once every pending path has been quiet for the
// debounce duration.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	now := time.Now()
	for _, at := range w.pending {
		if now.Sub(at) < w.debounceDur {
			w.mu.Unlock()
			return
		}
	}
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]time.Time)
	w.stats.Batches++
	w.mu.Unlock()

	sort.Strings(changed)
	logging.Watch("%d file(s) changed, re-running", len(changed))
	w.onChange(ctx, changed)
}

func (w *Watcher) inSourceTree(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	for _, dir := range SourceDirs {
		if first == dir {
			return true
		}
	}
	return false
}

// Relevant reports whether a change to path can affect coverage.
func Relevant(path string) bool {
	base := filepath.Base(path)
	if base == "Cargo.toml" {
		return true
	}
	return filepath.Ext(base) == ".rs" && !strings.HasPrefix(base, ".")
}

func skipDir(name string) bool {
	return name == "target" || name == "node_modules" || strings.HasPrefix(name, ".")
}
