package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogHandler_RecordsEntries(t *testing.T) {
	l, _ := quietLogger()
	log := slog.New(NewSlogHandler(l, slog.LevelDebug))

	log.Info("started", "module", "app", "port", 8080)
	log.Debug("tick")
	log.Error("failed", "err", errors.New("nope"))

	history := l.History()
	require.Len(t, history, 3)

	assert.Equal(t, LevelInfo, history[0].Level)
	assert.Equal(t, "app", history[0].Module)
	assert.Equal(t, map[string]any{"port": int64(8080)}, history[0].Data)

	assert.Equal(t, LevelDebug, history[1].Level)
	assert.Nil(t, history[1].Data)

	assert.Equal(t, LevelError, history[2].Level)
	assert.Equal(t, map[string]any{"err": "nope"}, history[2].Data)
}

func TestSlogHandler_DefaultModule(t *testing.T) {
	l, _ := quietLogger(WithModule("diag"))
	log := slog.New(NewSlogHandler(l, slog.LevelInfo))

	log.Info("plain")
	log.Info("tagged", "module", "http")

	history := l.History()
	require.Len(t, history, 2)
	assert.Equal(t, "diag", history[0].Module)
	assert.Equal(t, "http", history[1].Module)
}

func TestSlogHandler_Enabled(t *testing.T) {
	l, _ := quietLogger()
	h := NewSlogHandler(l, slog.LevelWarn)

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))

	slog.New(h).Info("dropped")
	assert.Empty(t, l.History())
}

func TestSlogHandler_DefaultLevelIsInfo(t *testing.T) {
	l, _ := quietLogger()
	h := NewSlogHandler(l, nil)
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
}

func TestSlogHandler_WithAttrsAndGroups(t *testing.T) {
	l, _ := quietLogger()
	log := slog.New(NewSlogHandler(l, slog.LevelInfo)).
		With("component", "http", "node", "a").
		WithGroup("req").
		With("id", "r1")

	log.Info("served", "status", 200, slog.Group("timing", "ms", 12))

	require.Len(t, l.History(), 1)
	e := l.History()[0]
	assert.Equal(t, "http", e.Module)
	assert.Equal(t, map[string]any{
		"node":          "a",
		"req.id":        "r1",
		"req.status":    int64(200),
		"req.timing.ms": int64(12),
	}, e.Data)
}

func TestSlogHandler_EmptyGroupIsNoop(t *testing.T) {
	l, _ := quietLogger()
	h := NewSlogHandler(l, slog.LevelInfo)
	assert.Same(t, h, h.WithGroup(""))
}
