package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/vigil/internal/config/loader"
	"github.com/dshills/vigil/internal/logging"
	"github.com/dshills/vigil/internal/proctor"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vigil.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noEnv() *loader.EnvLoader {
	return loader.NewEnvLoader(EnvPrefix).WithEnviron(func() []string { return nil })
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.Bus.HistoryCapacity)
	assert.Equal(t, proctor.DefaultConfig(), cfg.Proctor.Flags())
	assert.Equal(t, logging.LevelInfo, cfg.Log.LogLevel())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[bus]
history_capacity = 50

[log]
level = "debug"
color = "never"

[proctor]
detect_dev_tools = true
dev_tools_threshold = 200
`)

	cfg, err := NewLoaderWith(loader.NewTOMLLoader(path), noEnv()).Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Bus.HistoryCapacity)
	assert.Equal(t, logging.LevelDebug, cfg.Log.LogLevel())
	assert.Equal(t, "never", cfg.Log.Color)
	assert.True(t, cfg.Proctor.DetectDevTools)
	assert.Equal(t, 200, cfg.Proctor.DevToolsThreshold)
	assert.True(t, cfg.Proctor.DetectTabSwitch, "unset keys keep defaults")
	assert.Equal(t, Default().Log.HistoryCapacity, cfg.Log.HistoryCapacity)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, err := NewLoaderWith(loader.NewTOMLLoader(missing), noEnv()).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[log]\nlevel = \"debug\"\n")
	env := loader.NewEnvLoader(EnvPrefix).WithEnviron(func() []string {
		return []string{
			"VIGIL_LOG_LEVEL=error",
			"VIGIL_BUS_HISTORY_CAPACITY=7",
			"VIGIL_PROCTOR_FORCE_FULLSCREEN=true",
			"HOME=/root",
		}
	})

	cfg, err := NewLoaderWith(loader.NewTOMLLoader(path), env).Load()
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 7, cfg.Bus.HistoryCapacity)
	assert.True(t, cfg.Proctor.ForceFullscreen)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "syntax",
			content: "[bus\nhistory_capacity = 1",
			check: func(t *testing.T, err error) {
				var pe *loader.ParseError
				require.ErrorAs(t, err, &pe)
				assert.Positive(t, pe.Line)
			},
		},
		{
			name:    "unknown key",
			content: "[bus]\ncapacity = 1\n",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalid)
			},
		},
		{
			name:    "wrong type",
			content: "[bus]\nhistory_capacity = \"lots\"\n",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalid)
			},
		},
		{
			name:    "validation",
			content: "[log]\nlevel = \"loud\"\n",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalid)
				assert.Contains(t, err.Error(), "log.level")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := NewLoaderWith(loader.NewTOMLLoader(path), noEnv()).Load()
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Bus.HistoryCapacity = 0
	cfg.Log.Color = "rainbow"
	cfg.HTTP.Addr = " "
	cfg.Watch.DebounceMS = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	msg := err.Error()
	for _, want := range []string{"bus.history_capacity", "log.color", "http.addr", "watch.debounce_ms"} {
		assert.True(t, strings.Contains(msg, want), want)
	}
}

func TestValidate_HTTPAddrOptionalWhenDisabled(t *testing.T) {
	cfg := Default()
	cfg.HTTP.Enabled = false
	cfg.HTTP.Addr = ""
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Shorthand(t *testing.T) {
	path := writeConfig(t, "[ui]\nheadless = true\n")
	t.Setenv("VIGIL_HTTP_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.UI.Headless)
	assert.False(t, cfg.HTTP.Enabled)
}
