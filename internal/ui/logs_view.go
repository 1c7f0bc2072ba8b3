package ui

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dshills/vigil/internal/logging"
	"github.com/dshills/vigil/internal/ring"
)

// LogView shows logger entries at or above a minimum level.
type LogView struct {
	logger *logging.Logger
	sub    *logging.Subscription

	mu       sync.Mutex
	entries  *ring.Buffer[logging.Entry]
	minLevel logging.Level
	onChange func()
}

// NewLogView subscribes to logger and seeds from its history.
func NewLogView(logger *logging.Logger, capacity int) *LogView {
	v := &LogView{
		logger:  logger,
		entries: ring.New[logging.Entry](capacity),
	}
	v.sub = logger.Subscribe(v)
	for _, e := range logger.History() {
		v.entries.Push(e)
	}
	return v
}

// Title implements Panel.
func (v *LogView) Title() string {
	return fmt.Sprintf("Log ≥ %s", v.MinLevel())
}

// Handle implements logging.Handler.
func (v *LogView) Handle(e logging.Entry) error {
	v.entries.Push(e)
	v.changed()
	return nil
}

// HandleClear implements logging.ClearHandler.
func (v *LogView) HandleClear() error {
	v.entries.Clear()
	v.changed()
	return nil
}

// OnChange sets a callback invoked whenever the view content changes.
func (v *LogView) OnChange(fn func()) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// MinLevel returns the display threshold.
func (v *LogView) MinLevel() logging.Level {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.minLevel
}

// CycleLevel raises the display threshold, wrapping from ERROR to DEBUG.
func (v *LogView) CycleLevel() {
	v.mu.Lock()
	v.minLevel = (v.minLevel + 1) % logging.Level(len(logging.Levels))
	v.mu.Unlock()
}

// Visible returns entries at or above the threshold, oldest first.
func (v *LogView) Visible() []logging.Entry {
	threshold := v.MinLevel()
	var out []logging.Entry
	for _, e := range v.entries.Snapshot() {
		if e.Level >= threshold {
			out = append(out, e)
		}
	}
	return out
}

// Clear clears the logger history.
func (v *LogView) Clear() {
	v.logger.Clear()
}

// Close unsubscribes from the logger.
func (v *LogView) Close() {
	v.logger.Unsubscribe(v.sub)
}

// Draw implements Panel.
func (v *LogView) Draw(s Surface, r Rect) {
	if r.Empty() {
		return
	}
	fill(s, r, styleBase)

	visible := v.Visible()
	if len(visible) > r.H {
		visible = visible[len(visible)-r.H:]
	}
	for row, e := range visible {
		x := r.X
		x += drawText(s, x, r.Y+row, r.W, e.Time().Format("15:04:05.000")+" ", styleDim)
		x += drawText(s, x, r.Y+row, r.X+r.W-x, fmt.Sprintf("%-5s ", e.Level), levelStyle(e.Level))
		drawText(s, x, r.Y+row, r.X+r.W-x, truncate(formatEntry(e), r.X+r.W-x), styleBase)
	}
}

func (v *LogView) changed() {
	v.mu.Lock()
	fn := v.onChange
	v.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// formatEntry renders the message part of a row.
func formatEntry(e logging.Entry) string {
	line := e.Message
	if e.Module != "" {
		line = "[" + e.Module + "] " + line
	}
	if e.Data != nil {
		if b, err := json.Marshal(e.Data); err == nil {
			line += " " + string(b)
		}
	}
	return line
}
