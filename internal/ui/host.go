package ui

import (
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/vigil/internal/proctor"
)

// CellSize is the nominal pixel size of one terminal cell.
var CellSize = proctor.Size{Width: 8, Height: 16}

// Host turns terminal events into proctoring signals on a target.
//
//   - focus lost: visibilitychange (hidden) then blur
//   - focus gained: visibilitychange (visible)
//   - bracketed paste start: paste
//   - Ctrl+C / Ctrl+X: copy / cut
//   - right button press: contextmenu
//   - resize: resize, with Outer at the baseline size and Inner at the
//     current size
//
// Terminals have no fullscreen state, so fullscreenchange is never sent.
type Host struct {
	target *proctor.EventTarget

	mu        sync.Mutex
	base      proctor.Size
	current   proctor.Size
	buttons   tcell.ButtonMask
	pasting   bool
	dropPaste bool
}

// NewHost creates a host feeding target.
func NewHost(target *proctor.EventTarget) *Host {
	return &Host{target: target}
}

// Rebase records cols×rows as the baseline window size. The UI calls it
// when a session starts.
func (h *Host) Rebase(cols, rows int) {
	h.mu.Lock()
	h.base = cellsToPixels(cols, rows)
	h.current = h.base
	h.mu.Unlock()
}

// Handle translates ev. It reports whether the event was consumed because
// a listener prevented its default action; consumed events must not reach
// the rest of the UI.
func (h *Host) Handle(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventFocus:
		if e.Focused {
			h.dispatch(&proctor.Signal{Kind: proctor.SignalVisibilityChange})
			return false
		}
		h.dispatch(&proctor.Signal{Kind: proctor.SignalVisibilityChange, Hidden: true})
		h.dispatch(&proctor.Signal{Kind: proctor.SignalBlur})
		return false

	case *tcell.EventPaste:
		if e.Start() {
			drop := !h.dispatch(&proctor.Signal{Kind: proctor.SignalPaste})
			h.mu.Lock()
			h.pasting = true
			h.dropPaste = drop
			h.mu.Unlock()
			return drop
		}
		h.mu.Lock()
		drop := h.dropPaste
		h.pasting = false
		h.dropPaste = false
		h.mu.Unlock()
		return drop

	case *tcell.EventKey:
		h.mu.Lock()
		inDroppedPaste := h.pasting && h.dropPaste
		h.mu.Unlock()
		if inDroppedPaste {
			return true
		}
		switch {
		case isCtrl(e, tcell.KeyCtrlC, 'c'):
			return !h.dispatch(&proctor.Signal{Kind: proctor.SignalCopy})
		case isCtrl(e, tcell.KeyCtrlX, 'x'):
			return !h.dispatch(&proctor.Signal{Kind: proctor.SignalCut})
		}
		return false

	case *tcell.EventMouse:
		h.mu.Lock()
		pressed := e.Buttons()&tcell.Button2 != 0 && h.buttons&tcell.Button2 == 0
		h.buttons = e.Buttons()
		h.mu.Unlock()
		if pressed {
			return !h.dispatch(&proctor.Signal{Kind: proctor.SignalContextMenu})
		}
		return false

	case *tcell.EventResize:
		cols, rows := e.Size()
		h.mu.Lock()
		h.current = cellsToPixels(cols, rows)
		if h.base == (proctor.Size{}) {
			h.base = h.current
		}
		sig := &proctor.Signal{Kind: proctor.SignalResize, Outer: h.base, Inner: h.current}
		h.mu.Unlock()
		h.dispatch(sig)
		return false
	}
	return false
}

// dispatch sends sig and reports whether its default action is allowed.
func (h *Host) dispatch(sig *proctor.Signal) bool {
	if h.target == nil {
		return true
	}
	return h.target.Dispatch(sig)
}

// isCtrl matches a control key whether the terminal reports it as a control
// code or as a rune with the Ctrl modifier.
func isCtrl(e *tcell.EventKey, key tcell.Key, r rune) bool {
	if e.Key() == key {
		return true
	}
	return e.Key() == tcell.KeyRune && e.Modifiers()&tcell.ModCtrl != 0 && unicode.ToLower(e.Rune()) == r
}

func cellsToPixels(cols, rows int) proctor.Size {
	return proctor.Size{Width: cols * CellSize.Width, Height: rows * CellSize.Height}
}
