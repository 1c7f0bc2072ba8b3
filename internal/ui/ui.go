package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/vigil/internal/app"
	"github.com/dshills/vigil/internal/debounce"
	"github.com/dshills/vigil/internal/event"
	"github.com/dshills/vigil/internal/proctor"
)

// ErrQuit is returned by Run when the user quits.
var ErrQuit = errors.New("ui: quit")

// recentViolations is how many violations the proctor panel keeps.
const recentViolations = 200

// redrawInterval caps the redraw rate while events stream in.
const redrawInterval = 33 * time.Millisecond

// Panel is one region of the screen.
type Panel interface {
	Title() string
	Draw(s Surface, r Rect)
	Close()
}

// clearable panels can empty their source history.
type clearable interface {
	Clear()
}

type inputMode int

const (
	modeNormal inputMode = iota
	modeFilter
)

// UI is the terminal front end.
type UI struct {
	app    *app.Application
	screen tcell.Screen
	host   *Host

	events  *EventView
	logs    *LogView
	proctor *ProctorView
	panels  []Panel

	subs     *event.Subscriber
	redraw   chan struct{}
	throttle *debounce.Throttler

	mu      sync.Mutex
	focus   int
	mode    inputMode
	input   string
	message string
}

// New builds the UI over a. screen may be nil when the UI is driven
// through HandleEvent and Draw directly.
func New(a *app.Application, screen tcell.Screen) *UI {
	cfg := a.Config()
	u := &UI{
		app:     a,
		screen:  screen,
		host:    NewHost(a.Signals()),
		events:  NewEventView(a.Bus(), cfg.Bus.HistoryCapacity),
		logs:    NewLogView(a.Logger(), cfg.Log.HistoryCapacity),
		proctor: NewProctorView(a.Detector(), recentViolations),
		subs:    event.NewSubscriber(a.Bus()),
		redraw:  make(chan struct{}, 1),
	}
	u.panels = []Panel{u.events, u.proctor, u.logs}

	u.throttle = debounce.NewThrottler(redrawInterval, u.invalidate)
	u.events.OnChange(u.throttle.Call)
	u.logs.OnChange(u.throttle.Call)
	u.proctor.OnChange(u.throttle.Call)

	u.subs.SubscribeFunc(app.TopicSessionStarted, func(event.Record) error {
		if u.screen != nil {
			u.host.Rebase(u.screen.Size())
		}
		return nil
	})
	return u
}

// Host returns the terminal signal host.
func (u *UI) Host() *Host {
	return u.host
}

// Focused returns the focused panel.
func (u *UI) Focused() Panel {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.panels[u.focus]
}

// Message returns the status line message.
func (u *UI) Message() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.message
}

// Run initializes the screen and processes events until ctx is done or the
// user quits, in which case it returns ErrQuit.
func (u *UI) Run(ctx context.Context) error {
	if u.screen == nil {
		return errors.New("ui: no screen")
	}
	if err := u.screen.Init(); err != nil {
		return fmt.Errorf("ui: init screen: %w", err)
	}
	defer u.Close()
	defer u.screen.Fini()

	u.screen.EnableMouse()
	u.screen.EnablePaste()
	u.screen.EnableFocus()
	u.host.Rebase(u.screen.Size())

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	u.render()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if u.HandleEvent(ev) {
				return ErrQuit
			}
			u.render()
		case <-u.redraw:
			u.render()
		}
	}
}

// Close releases every subscription.
func (u *UI) Close() {
	u.subs.Close()
	for _, p := range u.panels {
		p.Close()
	}
	u.throttle.Cancel()
}

// HandleEvent processes one terminal event and reports whether the user
// asked to quit.
func (u *UI) HandleEvent(ev tcell.Event) bool {
	if u.host.Handle(ev) {
		u.setMessage("blocked by proctoring")
		return false
	}

	switch e := ev.(type) {
	case *tcell.EventResize:
		if u.screen != nil {
			u.screen.Sync()
		}
	case *tcell.EventKey:
		u.mu.Lock()
		mode := u.mode
		u.mu.Unlock()
		if mode == modeFilter {
			u.handleFilterKey(e)
			return false
		}
		return u.handleKey(e)
	}
	return false
}

func (u *UI) handleKey(e *tcell.EventKey) bool {
	switch e.Key() {
	case tcell.KeyEscape:
		return true
	case tcell.KeyTab:
		u.mu.Lock()
		u.focus = (u.focus + 1) % len(u.panels)
		u.mu.Unlock()
	case tcell.KeyBacktab:
		u.mu.Lock()
		u.focus = (u.focus + len(u.panels) - 1) % len(u.panels)
		u.mu.Unlock()
	case tcell.KeyUp:
		u.events.Move(-1)
	case tcell.KeyDown:
		u.events.Move(1)
	case tcell.KeyEnter:
		u.events.ToggleDetail()
	case tcell.KeyRune:
		return u.handleRune(e.Rune())
	}
	return false
}

func (u *UI) handleRune(r rune) bool {
	switch r {
	case 'q':
		return true
	case 'k':
		u.events.Move(-1)
	case 'j':
		u.events.Move(1)
	case '/':
		u.mu.Lock()
		u.mode = modeFilter
		u.input = u.events.filterExpr()
		u.mu.Unlock()
	case 'c':
		if c, ok := u.Focused().(clearable); ok {
			c.Clear()
			u.setMessage("cleared")
		}
	case 'l':
		u.logs.CycleLevel()
	case 's':
		if u.app.StartSession(proctor.ConfigPatch{}) {
			u.setMessage("session started")
		} else {
			u.setMessage("session already active")
		}
	case 'e':
		if u.app.EndSession() {
			u.setMessage("session ended")
		}
	}
	return false
}

func (u *UI) handleFilterKey(e *tcell.EventKey) {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch e.Key() {
	case tcell.KeyEscape:
		u.mode = modeNormal
		u.input = ""
	case tcell.KeyEnter:
		u.mode = modeNormal
		if err := u.events.SetFilter(u.input); err != nil {
			u.message = err.Error()
		} else {
			u.message = ""
		}
		u.input = ""
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(u.input); len(r) > 0 {
			u.input = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		u.input += string(e.Rune())
	}
}

// Draw lays out every panel on s, sized w×h cells.
//
//	status line
//	events      | proctor
//	            | log
//	input / message line
func (u *UI) Draw(s Surface, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	fill(s, Rect{W: w, H: h}, styleBase)
	drawText(s, 0, 0, w, padRight(" vigil  Tab panel  s start  e end  / filter  c clear  l level  q quit", w), styleStatus)

	body := Rect{X: 0, Y: 1, W: w, H: h - 2}
	leftW := w * 3 / 5
	rightW := w - leftW - 1
	proctorH := body.H / 3
	if proctorH < 4 {
		proctorH = min(4, body.H)
	}

	u.mu.Lock()
	focus := u.focus
	mode := u.mode
	input := u.input
	message := u.message
	u.mu.Unlock()

	regions := []Rect{
		{X: 0, Y: body.Y, W: leftW, H: body.H},
		{X: leftW + 1, Y: body.Y, W: rightW, H: proctorH},
		{X: leftW + 1, Y: body.Y + proctorH, W: rightW, H: body.H - proctorH},
	}
	for i, p := range u.panels {
		r := regions[i]
		if r.Empty() {
			continue
		}
		titleStyle := styleTitle
		if i == focus {
			titleStyle = styleFocused
		}
		drawText(s, r.X, r.Y, r.W, padRight(" "+p.Title(), r.W), titleStyle)
		p.Draw(s, Rect{X: r.X, Y: r.Y + 1, W: r.W, H: r.H - 1})
	}
	for y := body.Y; y < body.Y+body.H; y++ {
		s.SetContent(leftW, y, '│', nil, styleDim)
	}

	bottom := message
	if mode == modeFilter {
		bottom = "filter: " + input
	}
	drawText(s, 0, h-1, w, padRight(bottom, w), styleBase)
}

func (u *UI) render() {
	w, h := u.screen.Size()
	u.Draw(u.screen, w, h)
	u.screen.Show()
}

// invalidate schedules a redraw without blocking the publisher.
func (u *UI) invalidate() {
	select {
	case u.redraw <- struct{}{}:
	default:
	}
}

func (u *UI) setMessage(msg string) {
	u.mu.Lock()
	u.message = msg
	u.mu.Unlock()
}
