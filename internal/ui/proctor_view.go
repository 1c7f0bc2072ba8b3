package ui

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/vigil/internal/proctor"
	"github.com/dshills/vigil/internal/ring"
)

// alarmAt is the violation count at which the status colour is fully red.
const alarmAt = 10

// ProctorView shows the session state and recent violations.
type ProctorView struct {
	detector *proctor.Detector
	sub      *proctor.Subscription

	mu       sync.Mutex
	recent   *ring.Buffer[proctor.Violation]
	onChange func()
}

// NewProctorView subscribes to detector violations. The detector keeps no
// history, so the view starts empty.
func NewProctorView(detector *proctor.Detector, capacity int) *ProctorView {
	v := &ProctorView{
		detector: detector,
		recent:   ring.New[proctor.Violation](capacity),
	}
	v.sub = detector.Subscribe(v)
	return v
}

// Title implements Panel.
func (v *ProctorView) Title() string {
	return "Proctor"
}

// Handle implements proctor.Handler.
func (v *ProctorView) Handle(viol proctor.Violation) error {
	v.recent.Push(viol)
	v.changed()
	return nil
}

// OnChange sets a callback invoked whenever a violation arrives.
func (v *ProctorView) OnChange(fn func()) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// Recent returns the retained violations, oldest first.
func (v *ProctorView) Recent() []proctor.Violation {
	return v.recent.Snapshot()
}

// Close unsubscribes from the detector.
func (v *ProctorView) Close() {
	v.detector.Unsubscribe(v.sub)
}

// Draw implements Panel.
func (v *ProctorView) Draw(s Surface, r Rect) {
	if r.Empty() {
		return
	}
	fill(s, r, styleBase)

	session := v.detector.Session()
	state := "inactive"
	if session.Active {
		state = "ACTIVE"
	}
	status := tcell.StyleDefault.Foreground(tcellColor(severityColor(session.ViolationCount, alarmAt))).Bold(true)
	drawText(s, r.X, r.Y, r.W, fmt.Sprintf("session %s  violations %d", state, session.ViolationCount), status)

	if r.H < 2 {
		return
	}
	drawText(s, r.X, r.Y+1, r.W, formatFlags(session.Config), styleDim)

	recent := v.Recent()
	rows := r.H - 2
	if len(recent) > rows {
		recent = recent[len(recent)-rows:]
	}
	for i, viol := range recent {
		line := fmt.Sprintf("%s %-15s %s", viol.Time().Format("15:04:05"), viol.Type, viol.Message)
		drawText(s, r.X, r.Y+2+i, r.W, truncate(line, r.W), styleBase)
	}
}

func (v *ProctorView) changed() {
	v.mu.Lock()
	fn := v.onChange
	v.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func formatFlags(c proctor.Config) string {
	mark := func(on bool) string {
		if on {
			return "+"
		}
		return "-"
	}
	return fmt.Sprintf("%stab %sfullscreen %sclipboard %smenu %sdevtools",
		mark(c.DetectTabSwitch), mark(c.ForceFullscreen), mark(c.PreventCopyPaste),
		mark(c.PreventContextMenu), mark(c.DetectDevTools))
}
