package config

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/vigil/internal/debounce"
)

// ReloadFunc receives the result of every reload. On error cfg is the zero
// Config and the previous configuration should be kept.
type ReloadFunc func(cfg Config, err error)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce coalesces bursts of file events. Defaults to 200ms.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.delay = d
		}
	}
}

// WithWatchLogger sets where watcher errors are reported.
func WithWatchLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher reloads the config file whenever it changes on disk.
//
// The parent directory is watched rather than the file, so editors that
// save by renaming a temp file over the original are still seen.
type Watcher struct {
	loader   *Loader
	onReload ReloadFunc
	fsw      *fsnotify.Watcher
	path     string
	delay    time.Duration
	logger   *slog.Logger

	pending *debounce.Debouncer

	mu      sync.Mutex
	closed  bool
	reloads int
}

// NewWatcher starts watching the loader's file.
func NewWatcher(l *Loader, onReload ReloadFunc, opts ...WatcherOption) (*Watcher, error) {
	if l.Path() == "" {
		return nil, errors.New("config watcher: no config file")
	}
	path, err := filepath.Abs(l.Path())
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		loader:   l,
		onReload: onReload,
		fsw:      fsw,
		path:     path,
		delay:    200 * time.Millisecond,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.pending = debounce.New(w.delay, w.reload)
	return w, nil
}

// Run processes file events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				w.pending.Call()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "path", w.path, "error", err)
		}
	}
}

// Reloads returns how many reloads have run.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.pending.Stop()

	return w.fsw.Close()
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.reloads++
	w.mu.Unlock()

	cfg, err := w.loader.Load()
	if err != nil {
		w.logger.Warn("config reload failed", "path", w.path, "error", err)
	}
	if w.onReload != nil {
		w.onReload(cfg, err)
	}
}
