package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"aegis-hq/minerva/pkg/rules"
)

// WatcherConfig contains configuration for the override file watcher.
type WatcherConfig struct {
	// Path is the override file to watch.
	Path string

	// DebounceInterval is the quiet period before a change burst triggers
	// a reload (default: 100ms).
	DebounceInterval time.Duration
}

// Watcher watches the override file and re-applies it to a registry on
// change. The parent directory is watched rather than the file itself so
// editor atomic-rename saves are still observed.
type Watcher struct {
	registry *rules.Registry
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   WatcherConfig
	debounce *debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates an override file watcher.
func NewWatcher(config WatcherConfig, registry *rules.Registry, logger *slog.Logger) (*Watcher, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("watcher path cannot be empty")
	}
	if config.DebounceInterval == 0 {
		config.DebounceInterval = 100 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		registry: registry,
		watcher:  fsw,
		logger:   logger.With("component", "rules.source.watcher"),
		config:   config,
		debounce: newDebouncer(config.DebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch applies the overrides once, then blocks re-applying them on every
// settled file change until the context is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := LoadAndApply(w.config.Path, w.registry); err != nil {
		return fmt.Errorf("initial override load: %w", err)
	}

	dir := filepath.Dir(w.config.Path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.logger.Info("override watcher started",
		"path", w.config.Path,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	target := filepath.Clean(w.config.Path)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("override watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("override watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}

			w.logger.Debug("override file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			w.debounce.trigger(func() {
				if err := LoadAndApply(w.config.Path, w.registry); err != nil {
					w.logger.Error("override reload failed", "error", err)
					return
				}
				w.logger.Info("rule overrides reloaded", "path", w.config.Path)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			// Keep watching despite transient errors.
			w.logger.Error("override watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for Watch to return.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// debouncer collects rapid events and fires the callback only after a quiet
// period, preventing reload storms on bursty writes.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopCh   chan struct{}
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}

		d.mu.Lock()
		cb := d.callback
		d.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
}

func (d *debouncer) stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
