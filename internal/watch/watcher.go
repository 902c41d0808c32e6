// Package watch polls tree documents for changes.
package watch

import (
	"context"
	"os"
	"sync"
	"time"
)

// DefaultInterval is the polling interval used when none is configured.
const DefaultInterval = 200 * time.Millisecond

// Change represents a detected file change.
type Change struct {
	Path    string
	Removed bool
}

// Config configures the watcher.
type Config struct {
	// Paths are the files to watch.
	Paths []string

	// Interval is the delay between two polls.
	Interval time.Duration
}

type stamp struct {
	modTime time.Time
	size    int64
}

// Watcher reports modified, created and removed files by polling their
// modification time and size.
type Watcher struct {
	config   Config
	onChange func(Change)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	stamps  map[string]stamp
}

// New creates a watcher. The current state of every path is recorded
// immediately, so only later changes are reported.
func New(config Config) *Watcher {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	w := &Watcher{
		config: config,
		stamps: make(map[string]stamp),
	}
	for _, p := range config.Paths {
		if s, ok := statFile(p); ok {
			w.stamps[p] = s
		}
	}
	return w
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start polls until ctx is done or Stop is called. It returns nil after
// Stop and ctx.Err() after cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.markStopped()
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			w.Poll()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

func (w *Watcher) markStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Poll checks every path once and reports changes in path order.
func (w *Watcher) Poll() []Change {
	var changes []Change

	w.mu.Lock()
	for _, p := range w.config.Paths {
		cur, exists := statFile(p)
		prev, known := w.stamps[p]
		switch {
		case exists && (!known || cur != prev):
			w.stamps[p] = cur
			changes = append(changes, Change{Path: p})
		case !exists && known:
			delete(w.stamps, p)
			changes = append(changes, Change{Path: p, Removed: true})
		}
	}
	callback := w.onChange
	w.mu.Unlock()

	if callback != nil {
		for _, c := range changes {
			callback(c)
		}
	}
	return changes
}

func statFile(path string) (stamp, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return stamp{}, false
	}
	return stamp{modTime: info.ModTime(), size: info.Size()}, true
}
