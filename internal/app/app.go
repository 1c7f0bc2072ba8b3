// Package app wires the bus, the logger and the proctoring detector into
// one Application and manages its lifecycle.
package app

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/vigil/internal/config"
	"github.com/dshills/vigil/internal/event"
	"github.com/dshills/vigil/internal/logging"
	"github.com/dshills/vigil/internal/metrics"
	"github.com/dshills/vigil/internal/proctor"
)

// Application owns one Bus, one Logger and one Detector.
type Application struct {
	mu     sync.RWMutex
	config config.Config

	bus      *event.Bus
	logger   *logging.Logger
	detector *proctor.Detector
	target   proctor.Target
	signals  *proctor.EventTarget

	proctorEvents *event.Publisher
	configEvents  *event.Publisher

	registry *prometheus.Registry
	metrics  *metrics.Metrics
	diag     *slog.Logger

	// reloaded holds proctor flags from a config reload, applied by the
	// next StartSession.
	reloaded *proctor.ConfigPatch

	subs    *subscriptionManager
	running atomic.Bool
	opts    Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Ignored when
	// Config is set.
	ConfigPath string

	// Config overrides loading from ConfigPath and the environment.
	Config *config.Config

	// Console receives the styled log mirror when log.console is enabled.
	// Defaults to os.Stderr.
	Console io.Writer

	// Target is the host signal source. Defaults to an in-memory
	// EventTarget, available through Signals.
	Target proctor.Target

	// Registry receives the Prometheus collectors. Defaults to a fresh
	// registry.
	Registry *prometheus.Registry

	// Overrides is applied to the configuration after every load,
	// including reloads. Command-line flags use it.
	Overrides func(*config.Config)

	// Clock overrides time.Now for every component.
	Clock func() time.Time
}

// New loads configuration and builds the application.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}

	var cfg config.Config
	if opts.Config != nil {
		cfg = *opts.Config
	} else {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, &InitError{Component: "config", Err: err}
		}
		cfg = loaded
	}
	cfg, err := app.override(cfg)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}
	app.config = cfg

	app.bootstrap()
	return app, nil
}

// override applies Options.Overrides and validates the result.
func (app *Application) override(cfg config.Config) (config.Config, error) {
	if app.opts.Overrides != nil {
		app.opts.Overrides(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() {
	cfg := app.config
	clock := app.opts.Clock
	if clock == nil {
		clock = time.Now
	}

	// 1. Metrics
	app.registry = app.opts.Registry
	if app.registry == nil {
		app.registry = prometheus.NewRegistry()
	}
	app.metrics = metrics.New(app.registry)

	// 2. Logger, then the slog diagnostic channel on top of it
	logOpts := []logging.Option{
		logging.WithHistoryCapacity(cfg.Log.HistoryCapacity),
		logging.WithRecorder(app.metrics),
		logging.WithClock(clock),
		logging.WithModule("app"),
	}
	if cfg.Log.Console {
		w := app.opts.Console
		if w == nil {
			w = os.Stderr
		}
		logOpts = append(logOpts, logging.WithConsole(logging.NewConsole(w,
			logging.WithMinLevel(cfg.Log.LogLevel()),
			logging.WithColorMode(logging.ParseColorMode(cfg.Log.Color)),
		)))
	}
	app.logger = logging.New(logOpts...)
	app.diag = slog.New(logging.NewSlogHandler(app.logger, slog.LevelDebug))

	// 3. Event bus
	app.bus = event.NewBus(
		event.WithHistoryCapacity(cfg.Bus.HistoryCapacity),
		event.WithRecorder(app.metrics),
		event.WithDiagnostics(app.diag.With("module", "event")),
		event.WithClock(clock),
	)
	app.proctorEvents = event.NewPublisher(app.bus, SourceProctor)
	app.configEvents = event.NewPublisher(app.bus, SourceConfig)

	// 4. Detector
	app.target = app.opts.Target
	if app.target == nil {
		app.signals = proctor.NewEventTarget()
		app.target = app.signals
	}
	app.detector = proctor.NewDetector(app.target,
		proctor.WithDefaults(cfg.Proctor.Flags()),
		proctor.WithThreshold(cfg.Proctor.DevToolsThreshold),
		proctor.WithRecorder(app.metrics),
		proctor.WithDiagnostics(app.diag.With("module", "proctor")),
		proctor.WithClock(clock),
	)

	// 5. Cross-component subscriptions
	app.subs = newSubscriptionManager(app)
	app.subs.setup()
}

// Config returns the current configuration.
func (app *Application) Config() config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.config
}

// Bus returns the event bus.
func (app *Application) Bus() *event.Bus {
	return app.bus
}

// Logger returns the diagnostic logger.
func (app *Application) Logger() *logging.Logger {
	return app.logger
}

// Detector returns the proctoring detector.
func (app *Application) Detector() *proctor.Detector {
	return app.detector
}

// Target returns the host signal source.
func (app *Application) Target() proctor.Target {
	return app.target
}

// Signals returns the built-in in-memory target, or nil when a custom
// Target was supplied.
func (app *Application) Signals() *proctor.EventTarget {
	return app.signals
}

// Registry returns the Prometheus registry.
func (app *Application) Registry() *prometheus.Registry {
	return app.registry
}

// Metrics returns the Prometheus collectors.
func (app *Application) Metrics() *metrics.Metrics {
	return app.metrics
}

// Slog returns the structured diagnostic logger backed by Logger.
func (app *Application) Slog() *slog.Logger {
	return app.diag
}

// IsRunning reports whether Run is in progress.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}
