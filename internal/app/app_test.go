package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/vigil/internal/config"
	"github.com/dshills/vigil/internal/event"
	"github.com/dshills/vigil/internal/event/topic"
	"github.com/dshills/vigil/internal/logging"
	"github.com/dshills/vigil/internal/proctor"
)

func newTestApp(t *testing.T, mutate ...func(*config.Config)) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Watch.Enabled = false
	for _, m := range mutate {
		m(&cfg)
	}
	app, err := New(Options{Config: &cfg})
	require.NoError(t, err)
	return app
}

func names(records []event.Record) []topic.Name {
	out := make([]topic.Name, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func hidden() *proctor.Signal {
	return &proctor.Signal{Kind: proctor.SignalVisibilityChange, Hidden: true}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Bus.HistoryCapacity = -1

	_, err := New(Options{Config: &cfg})

	var ie *InitError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "config", ie.Component)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNew_LoadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vigil.toml")
	require.NoError(t, os.WriteFile(path, []byte("[bus]\nhistory_capacity = 3\n"), 0o644))

	app, err := New(Options{ConfigPath: path})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		app.Bus().Emit("tick", i)
	}
	assert.Len(t, app.Bus().History(), 3)
	assert.Equal(t, 3, app.Config().Bus.HistoryCapacity)
}

func TestApplication_ViolationBridge(t *testing.T) {
	app := newTestApp(t)
	require.True(t, app.StartSession(proctor.ConfigPatch{}))

	app.Signals().Dispatch(hidden())

	assert.Equal(t,
		[]topic.Name{TopicSessionStarted, TopicViolation},
		names(app.Bus().History()),
	)
	rec := app.Bus().History()[1]
	assert.Equal(t, SourceProctor, rec.Source)
	v, ok := rec.Data.(proctor.Violation)
	require.True(t, ok)
	assert.Equal(t, proctor.ViolationTabSwitch, v.Type)

	var warns []logging.Entry
	for _, e := range app.Logger().History() {
		if e.Level == logging.LevelWarn {
			warns = append(warns, e)
		}
	}
	require.Len(t, warns, 1)
	assert.Equal(t, "proctor", warns[0].Module)
	assert.Equal(t, v.Message, warns[0].Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics().Violations.WithLabelValues("tab-switch")))
}

func TestApplication_SessionEvents(t *testing.T) {
	app := newTestApp(t)

	assert.False(t, app.EndSession(), "nothing to end")
	require.True(t, app.StartSession(proctor.ConfigPatch{}))
	assert.False(t, app.StartSession(proctor.ConfigPatch{}))
	app.Signals().Dispatch(&proctor.Signal{Kind: proctor.SignalBlur})
	require.True(t, app.EndSession())

	got := names(app.Bus().History())
	assert.Equal(t, []topic.Name{TopicSessionStarted, TopicViolation, TopicSessionEnded}, got)

	ended := app.Bus().History()[2].Data.(sessionEvent)
	assert.Equal(t, 1, ended.ViolationCount)
}

func TestApplication_NoViolationsAfterShutdown(t *testing.T) {
	app := newTestApp(t)
	app.StartSession(proctor.ConfigPatch{})
	app.Shutdown()

	app.Signals().Dispatch(hidden())

	assert.False(t, app.Detector().Active())
	assert.Equal(t, 0, app.Signals().Total())
	assert.NotContains(t, names(app.Bus().History()), TopicViolation)
}

func TestApplication_BusFaultsReachLogger(t *testing.T) {
	app := newTestApp(t)
	app.Bus().Subscribe("exam:tick", event.HandlerFunc(func(event.Record) error {
		return errors.New("listener broke")
	}))

	app.Bus().Emit("exam:tick", nil)

	history := app.Logger().History()
	require.NotEmpty(t, history)
	last := history[len(history)-1]
	assert.Equal(t, logging.LevelWarn, last.Level)
	assert.Equal(t, "event", last.Module)
	assert.Equal(t, "event listener failed", last.Message)
}

func TestApplication_ConsoleMirror(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Default()
	cfg.Watch.Enabled = false
	cfg.Log.Console = true
	cfg.Log.Color = "never"
	cfg.Log.Level = "warn"

	app, err := New(Options{Config: &cfg, Console: &out})
	require.NoError(t, err)

	app.Logger().Info("quiet")
	app.Logger().Error("loud")

	assert.NotContains(t, out.String(), "quiet")
	assert.Contains(t, out.String(), "loud")
}

func TestApplication_ApplyReload(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) {
		c.Log.Console = true
		c.Log.Color = "never"
	})

	next := config.Default()
	next.Log.Level = "error"
	next.Proctor.DetectDevTools = true
	app.applyReload(next, nil)

	assert.Equal(t, "error", app.Config().Log.Level)
	assert.Equal(t, logging.LevelError, app.Logger().Console().MinLevel())
	assert.Contains(t, names(app.Bus().History()), TopicConfigReloaded)

	app.StartSession(proctor.ConfigPatch{DetectTabSwitch: proctor.Bool(false)})
	flags := app.Detector().Config()
	assert.True(t, flags.DetectDevTools, "reloaded flags seed the next session")
	assert.False(t, flags.DetectTabSwitch, "explicit patch wins")

	app.applyReload(config.Config{}, errors.New("bad file"))
	history := app.Logger().History()
	assert.Equal(t, logging.LevelError, history[len(history)-1].Level)
	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics().ConfigReloads.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics().ConfigReloads.WithLabelValues("ok")))
}

func TestApplication_RunStopsOnCancel(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.Proctor.AutoStart = true })
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx, func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	<-started
	assert.True(t, app.IsRunning())
	assert.True(t, app.Detector().Active())
	assert.ErrorIs(t, app.Run(ctx), ErrAlreadyRunning)

	cancel()
	require.NoError(t, <-done)
	assert.False(t, app.IsRunning())
	assert.False(t, app.Detector().Active())
	assert.Equal(t, TopicSessionEnded, app.Bus().History()[len(app.Bus().History())-1].Name)
}

func TestApplication_RunReturnsRunnerError(t *testing.T) {
	app := newTestApp(t)
	boom := errors.New("listen failed")

	err := app.Run(context.Background(),
		func(context.Context) error { return boom },
		func(ctx context.Context) error { <-ctx.Done(); return nil },
	)

	assert.ErrorIs(t, err, boom)
}

func TestApplication_RunWatchesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vigil.toml")
	require.NoError(t, os.WriteFile(path, []byte("[watch]\ndebounce_ms = 10\n"), 0o644))

	app, err := New(Options{ConfigPath: path})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx, func(ctx context.Context) error {
			close(ready)
			<-ctx.Done()
			return nil
		})
	}()
	<-ready
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("[watch]\ndebounce_ms = 10\n[log]\nlevel = \"debug\"\n"), 0o644))

	require.Eventually(t, func() bool {
		return app.Config().Log.Level == "debug"
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestApplication_OverridesSurviveReload(t *testing.T) {
	cfg := config.Default()
	cfg.Watch.Enabled = false
	app, err := New(Options{
		Config:    &cfg,
		Overrides: func(c *config.Config) { c.Log.Level = "debug" },
	})
	require.NoError(t, err)
	assert.Equal(t, "debug", app.Config().Log.Level)

	next := config.Default()
	next.Log.Level = "error"
	app.applyReload(next, nil)
	assert.Equal(t, "debug", app.Config().Log.Level)
}

func TestApplication_InvalidOverride(t *testing.T) {
	cfg := config.Default()
	_, err := New(Options{
		Config:    &cfg,
		Overrides: func(c *config.Config) { c.HTTP.Addr = "" },
	})

	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestApplication_HistoryClearedIsLogged(t *testing.T) {
	app := newTestApp(t)

	app.Bus().ClearHistory()

	history := app.Logger().History()
	require.NotEmpty(t, history)
	last := history[len(history)-1]
	assert.Equal(t, "event history cleared", last.Message)
	assert.Equal(t, "event", last.Module)

	app.Shutdown()
	before := len(app.Logger().History())
	app.Bus().ClearHistory()
	assert.Len(t, app.Logger().History(), before, "bridge is released on shutdown")
}
