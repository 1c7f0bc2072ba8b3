package logging

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/vigil/internal/ring"
)

// Recorder receives logger measurements. internal/metrics implements it.
type Recorder interface {
	LogRecorded(level string)
	LogListenerFault()
	LogHistorySize(n int)
}

// Option configures a Logger.
type Option func(*loggerConfig)

type loggerConfig struct {
	historyCapacity int
	console         *Console
	recorder        Recorder
	module          string
	faultOutput     io.Writer
	now             func() time.Time
	newID           func() string
}

func defaultLoggerConfig() loggerConfig {
	return loggerConfig{
		historyCapacity: ring.DefaultCapacity,
		faultOutput:     os.Stderr,
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// WithHistoryCapacity sets the maximum number of entries kept in history.
func WithHistoryCapacity(n int) Option {
	return func(c *loggerConfig) {
		if n > 0 {
			c.historyCapacity = n
		}
	}
}

// WithConsole sets the console mirror. Nil disables mirroring.
func WithConsole(console *Console) Option {
	return func(c *loggerConfig) {
		c.console = console
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *loggerConfig) {
		c.recorder = r
	}
}

// WithModule sets the module that slog handlers created by NewSlogHandler
// use for records without a module attribute.
func WithModule(module string) Option {
	return func(c *loggerConfig) {
		c.module = module
	}
}

// WithFaultOutput sets where subscriber failures are reported when no
// console is configured. Defaults to os.Stderr.
func WithFaultOutput(w io.Writer) Option {
	return func(c *loggerConfig) {
		if w != nil {
			c.faultOutput = w
		}
	}
}

// WithClock sets the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *loggerConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator sets the entry ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *loggerConfig) {
		if fn != nil {
			c.newID = fn
		}
	}
}
