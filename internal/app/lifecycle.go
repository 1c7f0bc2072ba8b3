package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/vigil/internal/config"
	"github.com/dshills/vigil/internal/logging"
	"github.com/dshills/vigil/internal/proctor"
)

// Runner is a long-running component started by Run, such as the HTTP
// server or the terminal UI. It must return when ctx is done.
type Runner func(ctx context.Context) error

// StartSession starts a proctoring session and publishes
// proctor:session_started. It returns false when a session is already
// active.
func (app *Application) StartSession(patch proctor.ConfigPatch) bool {
	app.mu.Lock()
	pending := app.reloaded
	app.mu.Unlock()
	if pending != nil {
		patch = pending.Overlay(patch)
	}

	if !app.detector.StartSession(patch) {
		return false
	}

	app.mu.Lock()
	if app.reloaded == pending {
		app.reloaded = nil
	}
	app.mu.Unlock()
	app.publishSession(TopicSessionStarted)
	app.logger.Info("proctoring session started", logging.InModule("proctor"))
	return true
}

// EndSession ends the proctoring session and publishes
// proctor:session_ended. It returns false when no session was active.
func (app *Application) EndSession() bool {
	if !app.detector.EndSession() {
		return false
	}
	app.publishSession(TopicSessionEnded)
	app.logger.Info("proctoring session ended",
		logging.InModule("proctor"),
		logging.WithData(map[string]any{"violations": app.detector.ViolationCount()}),
	)
	return true
}

// Run starts the config watcher and every runner, and blocks until ctx is
// done or a runner fails. The first runner error is returned; a clean
// cancellation returns nil.
func (app *Application) Run(ctx context.Context, runners ...Runner) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	cfg := app.Config()
	if cfg.Proctor.AutoStart {
		app.StartSession(proctor.ConfigPatch{})
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled && app.opts.Config == nil && app.opts.ConfigPath != "" {
		w, err := config.NewWatcher(config.NewLoader(app.opts.ConfigPath), app.applyReload,
			config.WithDebounce(cfg.Watch.Debounce()),
			config.WithWatchLogger(app.diag.With("module", "config")),
		)
		if err != nil {
			app.logger.Warn(fmt.Sprintf("config watch disabled: %v", err), logging.InModule("config"))
		} else {
			g.Go(func() error { return w.Run(gctx) })
		}
	}

	for _, r := range runners {
		g.Go(func() error { return r(gctx) })
	}

	err := g.Wait()
	app.shutdown()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Shutdown ends any session and releases bridge subscriptions. It is
// called by Run on exit and may be called directly when Run was not used.
func (app *Application) Shutdown() {
	app.shutdown()
}

func (app *Application) shutdown() {
	app.EndSession()
	app.subs.cleanup()
	app.detector.Close()
}

// applyReload installs a reloaded configuration. History capacities take
// effect on the next process start. The console threshold applies at once
// and the proctor flags seed the next StartSession.
func (app *Application) applyReload(cfg config.Config, err error) {
	if err == nil {
		cfg, err = app.override(cfg)
	}
	app.metrics.ConfigReloaded(err)
	if err != nil {
		app.logger.Error("config reload failed",
			logging.InModule("config"),
			logging.WithData(map[string]any{"error": err.Error()}),
		)
		return
	}

	flags := cfg.Proctor.Flags().Patch()
	app.mu.Lock()
	app.config = cfg
	app.reloaded = &flags
	app.mu.Unlock()

	if c := app.logger.Console(); c != nil {
		c.SetMinLevel(cfg.Log.LogLevel())
	}
	app.configEvents.Emit(TopicConfigReloaded, map[string]any{
		"path":    app.opts.ConfigPath,
		"level":   cfg.Log.Level,
		"proctor": cfg.Proctor.Flags(),
	})
	app.logger.Info("configuration reloaded", logging.InModule("config"))
}
