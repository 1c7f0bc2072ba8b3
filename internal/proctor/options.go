package proctor

import (
	"log/slog"
	"time"
)

// Recorder receives detector measurements. internal/metrics implements it.
type Recorder interface {
	ViolationRecorded(kind string)
	SessionStarted()
	SessionEnded()
	ViolationListenerFault()
}

// FaultHandler is called when a violation listener fails.
type FaultHandler func(v Violation, err error)

// Option configures a Detector.
type Option func(*detectorConfig)

type detectorConfig struct {
	threshold    int
	defaults     Config
	now          func() time.Time
	recorder     Recorder
	faultHandler FaultHandler
	logger       *slog.Logger
}

func defaultDetectorConfig() detectorConfig {
	return detectorConfig{
		threshold: DefaultDevToolsThreshold,
		defaults:  DefaultConfig(),
		now:       time.Now,
	}
}

// WithThreshold sets the devtools resize threshold in pixels.
func WithThreshold(px int) Option {
	return func(c *detectorConfig) {
		if px > 0 {
			c.threshold = px
		}
	}
}

// WithDefaults sets the config the first session patch is merged over.
func WithDefaults(cfg Config) Option {
	return func(c *detectorConfig) {
		c.defaults = cfg
	}
}

// WithClock sets the time source used for violation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *detectorConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *detectorConfig) {
		c.recorder = r
	}
}

// WithFaultHandler sets a callback invoked for every listener fault.
func WithFaultHandler(h FaultHandler) Option {
	return func(c *detectorConfig) {
		c.faultHandler = h
	}
}

// WithDiagnostics sets the logger listener faults are reported to.
// Defaults to slog.Default() at report time.
func WithDiagnostics(l *slog.Logger) Option {
	return func(c *detectorConfig) {
		c.logger = l
	}
}
