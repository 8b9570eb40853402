package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 400 * time.Millisecond

// Reloader watches the config file and invokes a callback with the
// reparsed config on change. Scoring weights can be tuned without a
// restart; a file that fails to parse is logged and skipped, keeping
// the last good config active.
type Reloader struct {
	path     string
	onChange func(*Config)
	logger   *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
	started bool
}

// NewReloader creates a reloader for the config file at path.
func NewReloader(path string, onChange func(*Config), logger *zap.Logger) *Reloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reloader{path: path, onChange: onChange, logger: logger}
}

// Start begins watching. It returns immediately; events are handled on
// a background goroutine until ctx is cancelled or Stop is called.
func (r *Reloader) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory, not the file: editors replace config files
	// by rename, which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		_ = watcher.Close()
		return err
	}
	r.watcher = watcher
	r.started = true

	go r.loop(ctx)
	return nil
}

func (r *Reloader) loop(ctx context.Context) {
	base := filepath.Base(r.path)
	for {
		select {
		case <-ctx.Done():
			r.Stop()
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			r.scheduleReload()
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("config watch error", zap.Error(err))
		}
	}
}

// scheduleReload debounces bursts of write events into one reload.
func (r *Reloader) scheduleReload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(reloadDebounce, r.reload)
}

func (r *Reloader) reload() {
	cfg, err := Load(r.path)
	if err != nil {
		r.logger.Warn("config reload failed, keeping previous config",
			zap.String("path", r.path), zap.Error(err))
		return
	}
	r.logger.Info("config reloaded", zap.String("path", r.path))
	r.onChange(cfg)
}

// Stop stops watching. Safe to call more than once.
func (r *Reloader) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}
	r.started = false
	if r.timer != nil {
		r.timer.Stop()
	}
	_ = r.watcher.Close()
}
