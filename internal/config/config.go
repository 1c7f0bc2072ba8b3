package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/vigil/internal/logging"
	"github.com/dshills/vigil/internal/proctor"
	"github.com/dshills/vigil/internal/ring"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "VIGIL_"

// Config is the complete application configuration.
type Config struct {
	Bus     BusConfig     `toml:"bus"`
	Log     LogConfig     `toml:"log"`
	Proctor ProctorConfig `toml:"proctor"`
	HTTP    HTTPConfig    `toml:"http"`
	UI      UIConfig      `toml:"ui"`
	Watch   WatchConfig   `toml:"watch"`
}

// BusConfig configures the event bus.
type BusConfig struct {
	HistoryCapacity int `toml:"history_capacity"`
}

// LogConfig configures the logger and its console mirror.
type LogConfig struct {
	Level           string `toml:"level"`
	HistoryCapacity int    `toml:"history_capacity"`
	Console         bool   `toml:"console"`
	Color           string `toml:"color"`
}

// ProctorConfig configures the detector. The flags seed the config the
// first session is merged over.
type ProctorConfig struct {
	DetectTabSwitch    bool `toml:"detect_tab_switch"`
	ForceFullscreen    bool `toml:"force_fullscreen"`
	PreventCopyPaste   bool `toml:"prevent_copy_paste"`
	PreventContextMenu bool `toml:"prevent_context_menu"`
	DetectDevTools     bool `toml:"detect_dev_tools"`
	DevToolsThreshold  int  `toml:"dev_tools_threshold"`
	AutoStart          bool `toml:"auto_start"`
}

// HTTPConfig configures the read-only HTTP API.
type HTTPConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	Headless bool `toml:"headless"`
}

// WatchConfig configures live reload of the config file.
type WatchConfig struct {
	Enabled    bool `toml:"enabled"`
	DebounceMS int  `toml:"debounce_ms"`
}

// Default returns the built-in configuration.
func Default() Config {
	flags := proctor.DefaultConfig()
	return Config{
		Bus: BusConfig{HistoryCapacity: ring.DefaultCapacity},
		Log: LogConfig{
			Level:           "info",
			HistoryCapacity: ring.DefaultCapacity,
			Console:         false,
			Color:           "auto",
		},
		Proctor: ProctorConfig{
			DetectTabSwitch:    flags.DetectTabSwitch,
			ForceFullscreen:    flags.ForceFullscreen,
			PreventCopyPaste:   flags.PreventCopyPaste,
			PreventContextMenu: flags.PreventContextMenu,
			DetectDevTools:     flags.DetectDevTools,
			DevToolsThreshold:  proctor.DefaultDevToolsThreshold,
		},
		HTTP:  HTTPConfig{Enabled: true, Addr: "127.0.0.1:9464"},
		Watch: WatchConfig{Enabled: true, DebounceMS: 200},
	}
}

// Flags returns the detector gating flags.
func (p ProctorConfig) Flags() proctor.Config {
	return proctor.Config{
		DetectTabSwitch:    p.DetectTabSwitch,
		ForceFullscreen:    p.ForceFullscreen,
		PreventCopyPaste:   p.PreventCopyPaste,
		PreventContextMenu: p.PreventContextMenu,
		DetectDevTools:     p.DetectDevTools,
	}
}

// LogLevel returns the parsed log level.
func (l LogConfig) LogLevel() logging.Level {
	return logging.ParseLevel(l.Level)
}

// Debounce returns the reload debounce as a duration.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// Validate reports every problem in c. Each error wraps ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Bus.HistoryCapacity <= 0 {
		invalid("bus.history_capacity must be positive, got %d", c.Bus.HistoryCapacity)
	}
	if c.Log.HistoryCapacity <= 0 {
		invalid("log.history_capacity must be positive, got %d", c.Log.HistoryCapacity)
	}
	var lvl logging.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		invalid("log.level: %v", err)
	}
	switch strings.ToLower(c.Log.Color) {
	case "auto", "always", "never":
	default:
		invalid("log.color must be auto, always or never, got %q", c.Log.Color)
	}
	if c.Proctor.DevToolsThreshold <= 0 {
		invalid("proctor.dev_tools_threshold must be positive, got %d", c.Proctor.DevToolsThreshold)
	}
	if c.HTTP.Enabled && strings.TrimSpace(c.HTTP.Addr) == "" {
		invalid("http.addr is required when http is enabled")
	}
	if c.Watch.DebounceMS < 0 {
		invalid("watch.debounce_ms must not be negative, got %d", c.Watch.DebounceMS)
	}

	return errors.Join(errs...)
}
