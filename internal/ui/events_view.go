package ui

import (
	"fmt"
	"sync"

	"github.com/tidwall/pretty"

	"github.com/dshills/vigil/internal/event"
)

// EventView lists bus records with an optional filter and a detail pane.
type EventView struct {
	bus    *event.Bus
	mirror *event.HistoryMirror

	mu       sync.Mutex
	filter   Filter
	selected int
	follow   bool
	detail   bool
}

// NewEventView subscribes to bus and seeds from its history.
func NewEventView(bus *event.Bus, capacity int) *EventView {
	return &EventView{
		bus:    bus,
		mirror: event.NewHistoryMirror(bus, capacity),
		follow: true,
	}
}

// Title implements Panel.
func (v *EventView) Title() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.filter.String() == "" {
		return "Events"
	}
	return fmt.Sprintf("Events [%s]", v.filter.String())
}

// OnChange sets a callback invoked whenever a record arrives.
func (v *EventView) OnChange(fn func()) {
	v.mirror.OnChange(fn)
}

// SetFilter replaces the filter. An invalid expression keeps the old one.
func (v *EventView) SetFilter(expr string) error {
	f, err := ParseFilter(expr)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.filter = f
	v.selected = 0
	v.follow = true
	v.mu.Unlock()
	return nil
}

// Visible returns the records that pass the filter, oldest first.
func (v *EventView) Visible() []event.Record {
	v.mu.Lock()
	f := v.filter
	v.mu.Unlock()

	all := v.mirror.Records()
	out := all[:0:0]
	for _, rec := range all {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Move shifts the selection by delta. Moving to the last row resumes
// following new records.
func (v *EventView) Move(delta int) {
	n := len(v.Visible())
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.follow {
		v.selected = n - 1
	}
	v.selected = clamp(v.selected+delta, 0, n-1)
	v.follow = v.selected >= n-1
}

// Selected returns the selected record.
func (v *EventView) Selected() (event.Record, bool) {
	visible := v.Visible()
	if len(visible) == 0 {
		return event.Record{}, false
	}
	v.mu.Lock()
	idx := v.selected
	if v.follow {
		idx = len(visible) - 1
	}
	v.mu.Unlock()
	return visible[clamp(idx, 0, len(visible)-1)], true
}

// ToggleDetail shows or hides the detail pane.
func (v *EventView) ToggleDetail() {
	v.mu.Lock()
	v.detail = !v.detail
	v.mu.Unlock()
}

// Detail returns the selected record's data as indented JSON.
func (v *EventView) Detail() string {
	rec, ok := v.Selected()
	if !ok {
		return ""
	}
	return string(pretty.Pretty(recordJSON(rec.Data)))
}

// Clear clears the bus history. The view resets when the control event
// comes back through the mirror.
func (v *EventView) Clear() {
	v.bus.ClearHistory()
}

// Close unsubscribes from the bus.
func (v *EventView) Close() {
	v.mirror.Close()
}

// Draw implements Panel.
func (v *EventView) Draw(s Surface, r Rect) {
	if r.Empty() {
		return
	}
	fill(s, r, styleBase)

	v.mu.Lock()
	showDetail := v.detail
	v.mu.Unlock()

	list := r
	if showDetail && r.H > 4 {
		list.H = r.H / 2
		v.drawDetail(s, Rect{X: r.X, Y: r.Y + list.H, W: r.W, H: r.H - list.H})
	}

	visible := v.Visible()
	selRec, hasSel := v.Selected()
	start := 0
	if len(visible) > list.H {
		start = len(visible) - list.H
		if hasSel {
			for i := range visible {
				if visible[i].ID == selRec.ID && i < start {
					start = i
				}
			}
		}
	}

	for row, rec := range visible[start:] {
		if row >= list.H {
			break
		}
		style := styleBase
		if hasSel && rec.ID == selRec.ID {
			style = styleSelected
		}
		drawText(s, list.X, list.Y+row, list.W, padRight(formatRecord(rec), list.W), style)
	}
}

func (v *EventView) drawDetail(s Surface, r Rect) {
	drawText(s, r.X, r.Y, r.W, padRight("─ detail ", r.W), styleDim)
	lines := splitLines(v.Detail())
	for i, line := range lines {
		if i+1 >= r.H {
			break
		}
		drawText(s, r.X, r.Y+1+i, r.W, line, styleBase)
	}
}

// formatRecord renders one list row.
func formatRecord(rec event.Record) string {
	line := rec.Time().Format("15:04:05.000") + " " + string(rec.Name)
	if rec.Source != "" {
		line += " [" + rec.Source + "]"
	}
	if rec.Data != nil {
		line += " " + string(pretty.Ugly(recordJSON(rec.Data)))
	}
	return line
}

func (v *EventView) filterExpr() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter.String()
}
