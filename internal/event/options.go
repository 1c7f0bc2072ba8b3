package event

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/vigil/internal/ring"
)

// BusOption configures a Bus.
type BusOption func(*busConfig)

// busConfig contains configuration for the event bus.
type busConfig struct {
	historyCapacity int
	faultHandler    FaultHandler
	recorder        Recorder
	logger          *slog.Logger
	now             func() time.Time
	newID           func() string
}

// defaultBusConfig returns sensible default configuration.
func defaultBusConfig() busConfig {
	return busConfig{
		historyCapacity: ring.DefaultCapacity,
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// WithHistoryCapacity sets the maximum number of records kept in history.
func WithHistoryCapacity(n int) BusOption {
	return func(c *busConfig) {
		if n > 0 {
			c.historyCapacity = n
		}
	}
}

// WithFaultHandler sets a callback invoked for every listener fault, in
// addition to the diagnostic log line.
func WithFaultHandler(h FaultHandler) BusOption {
	return func(c *busConfig) {
		c.faultHandler = h
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) BusOption {
	return func(c *busConfig) {
		c.recorder = r
	}
}

// WithDiagnostics sets the logger listener faults are reported to.
// Defaults to slog.Default() at report time.
func WithDiagnostics(l *slog.Logger) BusOption {
	return func(c *busConfig) {
		c.logger = l
	}
}

// WithClock sets the time source used for record timestamps.
func WithClock(now func() time.Time) BusOption {
	return func(c *busConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator sets the record ID generator.
func WithIDGenerator(fn func() string) BusOption {
	return func(c *busConfig) {
		if fn != nil {
			c.newID = fn
		}
	}
}
