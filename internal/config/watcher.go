package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"emojichat/internal/logging"
)

// Watcher reloads the config file when it changes on disk and hands the new
// Config to a callback. It watches the parent directory so editors that save
// by rename are seen.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	onChange    func(*Config)
	debounceDur time.Duration
	pending     bool
	lastEvent   time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Watcher{
		watcher:     w,
		path:        filepath.Clean(abs),
		onChange:    onChange,
		debounceDur: 200 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. It is non-blocking.
func (cw *Watcher) Start(ctx context.Context) error {
	cw.mu.Lock()
	if cw.running {
		cw.mu.Unlock()
		return nil
	}
	cw.running = true
	cw.mu.Unlock()

	if err := cw.watcher.Add(filepath.Dir(cw.path)); err != nil {
		cw.mu.Lock()
		cw.running = false
		cw.mu.Unlock()
		return err
	}
	logging.Config("watching %s", cw.path)

	go cw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit. Safe to call
// more than once, and before Start.
func (cw *Watcher) Stop() {
	cw.mu.Lock()
	wasRunning := cw.running
	cw.running = false
	cw.mu.Unlock()

	if wasRunning {
		close(cw.stopCh)
		<-cw.doneCh
	}
	if err := cw.watcher.Close(); err != nil {
		logging.Get(logging.CategoryConfig).Warn("error closing watcher: %v", err)
	}
}

func (cw *Watcher) run(ctx context.Context) {
	defer close(cw.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopCh:
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cw.mu.Lock()
			cw.pending = true
			cw.lastEvent = time.Now()
			cw.mu.Unlock()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryConfig).Error("watcher error: %v", err)

		case <-ticker.C:
			cw.reloadIfSettled()
		}
	}
}

// reloadIfSettled reloads once events have been quiet for the debounce window.
func (cw *Watcher) reloadIfSettled() {
	cw.mu.Lock()
	if !cw.pending || time.Since(cw.lastEvent) < cw.debounceDur {
		cw.mu.Unlock()
		return
	}
	cw.pending = false
	cw.mu.Unlock()

	cfg, err := Load(cw.path)
	if err != nil {
		logging.Get(logging.CategoryConfig).Warn("reload failed, keeping previous config: %v", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		logging.Get(logging.CategoryConfig).Warn("reloaded config invalid, ignoring: %v", err)
		return
	}
	logging.Config("config reloaded from %s", cw.path)
	cw.onChange(cfg)
}
