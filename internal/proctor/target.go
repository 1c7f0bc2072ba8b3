package proctor

import (
	"sync"

	"github.com/dshills/vigil/internal/event/dispatch"
)

// SignalKind names a host UI signal.
type SignalKind string

// Signal kinds a Target can deliver.
const (
	SignalVisibilityChange SignalKind = "visibilitychange"
	SignalBlur             SignalKind = "blur"
	SignalFullscreenChange SignalKind = "fullscreenchange"
	SignalCopy             SignalKind = "copy"
	SignalCut              SignalKind = "cut"
	SignalPaste            SignalKind = "paste"
	SignalContextMenu      SignalKind = "contextmenu"
	SignalResize           SignalKind = "resize"
)

// Size is a width and height in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Signal is one host UI notification.
type Signal struct {
	Kind SignalKind

	// Hidden is set on visibilitychange when the page is no longer visible.
	Hidden bool

	// Fullscreen is set on fullscreenchange while something is fullscreen.
	Fullscreen bool

	// Outer and Inner are the window and viewport sizes on resize.
	Outer Size
	Inner Size

	prevented bool
}

// PreventDefault cancels the host's default action for the signal.
func (s *Signal) PreventDefault() {
	s.prevented = true
}

// DefaultPrevented reports whether a listener cancelled the default action.
func (s *Signal) DefaultPrevented() bool {
	return s.prevented
}

// Target is a source of host UI signals.
type Target interface {
	// Listen registers fn for one signal kind. The returned cancel func
	// detaches it and is safe to call more than once.
	Listen(kind SignalKind, fn func(*Signal)) (cancel func())
}

// EventTarget is an in-memory Target. Hosts and tests feed it signals
// through Dispatch.
type EventTarget struct {
	mu         sync.Mutex
	listeners  map[SignalKind]*dispatch.Set[*Signal]
	dispatcher *dispatch.SyncDispatcher[*Signal]
}

// NewEventTarget creates an empty target.
func NewEventTarget() *EventTarget {
	return &EventTarget{
		listeners:  make(map[SignalKind]*dispatch.Set[*Signal]),
		dispatcher: dispatch.NewSyncDispatcher[*Signal](),
	}
}

// Listen implements Target. A nil fn is ignored.
func (t *EventTarget) Listen(kind SignalKind, fn func(*Signal)) func() {
	if fn == nil {
		return func() {}
	}

	t.mu.Lock()
	set, ok := t.listeners[kind]
	if !ok {
		set = dispatch.NewSet[*Signal](string(kind))
		t.listeners[kind] = set
	}
	sub := set.Add(dispatch.HandlerFunc[*Signal](func(s *Signal) error {
		fn(s)
		return nil
	}))
	t.mu.Unlock()

	return sub.Cancel
}

// Dispatch delivers sig to the listeners of its kind. It returns false
// when a listener prevented the default action. Panicking listeners are
// isolated.
func (t *EventTarget) Dispatch(sig *Signal) bool {
	if sig == nil {
		return true
	}

	t.mu.Lock()
	set := t.listeners[sig.Kind]
	t.mu.Unlock()

	if set != nil {
		t.dispatcher.DispatchAll(sig, set.Snapshot())
	}
	return !sig.DefaultPrevented()
}

// Listeners returns the number of listeners attached for kind.
func (t *EventTarget) Listeners(kind SignalKind) int {
	t.mu.Lock()
	set := t.listeners[kind]
	t.mu.Unlock()

	if set == nil {
		return 0
	}
	return set.Len()
}

// Total returns the number of listeners attached across all kinds.
func (t *EventTarget) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, set := range t.listeners {
		n += set.Len()
	}
	return n
}
