package logging

import (
	"context"
	"log/slog"
	"strings"
)

// SlogHandler is a slog.Handler that records into a Logger.
//
// The "module" (or "component") attribute becomes the entry module; every
// other attribute is collected into the entry data map. Group names prefix
// keys with dots.
type SlogHandler struct {
	logger *Logger
	level  slog.Leveler
	module string
	attrs  []slog.Attr
	groups []string
}

// NewSlogHandler returns a handler recording into l at or above level.
// Records without a module attribute use the logger's WithModule default.
func NewSlogHandler(l *Logger, level slog.Leveler) *SlogHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &SlogHandler{logger: l, level: level, module: l.config.module}
}

// Enabled implements slog.Handler.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	module := h.module
	data := make(map[string]any)

	// Attributes from WithAttrs already carry their groups.
	for _, a := range h.attrs {
		h.collect(data, &module, nil, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.collect(data, &module, h.groups, a)
		return true
	})

	var payload any
	if len(data) > 0 {
		payload = data
	}
	h.logger.Log(FromSlog(r.Level), r.Message, module, payload)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = nil
	for _, a := range attrs {
		if len(h.groups) == 0 && isModuleKey(a.Key) {
			clone.module = a.Value.String()
			continue
		}
		clone.attrs = append(clone.attrs, qualify(h.groups, a))
	}
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), clone.attrs...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *SlogHandler) collect(data map[string]any, module *string, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if len(groups) == 0 && isModuleKey(a.Key) {
		*module = a.Value.String()
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		sub := groups
		if a.Key != "" {
			sub = append(append([]string{}, groups...), a.Key)
		}
		for _, ga := range a.Value.Group() {
			h.collect(data, module, sub, ga)
		}
		return
	}

	key := strings.Join(append(append([]string{}, groups...), a.Key), ".")
	switch a.Value.Kind() {
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			data[key] = err.Error()
			return
		}
		data[key] = a.Value.Any()
	default:
		data[key] = a.Value.Any()
	}
}

// qualify bakes the current groups into an attribute so WithAttrs keeps
// the grouping it was called under.
func qualify(groups []string, a slog.Attr) slog.Attr {
	for i := len(groups) - 1; i >= 0; i-- {
		a = slog.Attr{Key: groups[i], Value: slog.GroupValue(a)}
	}
	return a
}

func isModuleKey(k string) bool {
	return k == "module" || k == "component"
}
