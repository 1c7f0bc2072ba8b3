package proctor

import (
	"log/slog"
	"sync"

	"github.com/dshills/vigil/internal/event/dispatch"
)

// Handler receives violations.
type Handler = dispatch.Handler[Violation]

// HandlerFunc is a function adapter for Handler.
type HandlerFunc = dispatch.HandlerFunc[Violation]

// Subscription is the handle returned by Subscribe.
type Subscription = dispatch.Subscription

// subscribersKey is the registry key reported by violation subscriptions.
const subscribersKey = "violation"

// Detector runs proctoring sessions against a Target.
type Detector struct {
	target Target

	mu         sync.Mutex
	active     bool
	current    Config
	count      int
	generation uint64
	detach     []func()

	subscribers *dispatch.Set[Violation]
	dispatcher  *dispatch.SyncDispatcher[Violation]
	config      detectorConfig
}

// NewDetector creates an inactive detector watching target.
func NewDetector(target Target, opts ...Option) *Detector {
	config := defaultDetectorConfig()
	for _, opt := range opts {
		opt(&config)
	}

	d := &Detector{
		target:      target,
		current:     config.defaults,
		subscribers: dispatch.NewSet[Violation](subscribersKey),
		config:      config,
	}
	d.dispatcher = dispatch.NewSyncDispatcher(
		dispatch.WithFaultHandler(d.reportFault),
	)
	return d
}

// StartSession merges patch over the last config, resets the violation
// count and attaches the listeners of every enabled gate. It returns false
// and changes nothing when a session is already active.
func (d *Detector) StartSession(patch ConfigPatch) bool {
	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		return false
	}

	d.current = d.current.Merge(patch)
	d.active = true
	d.count = 0
	d.generation++
	gen := d.generation

	var enabled []*gate
	for i := range gates {
		if gates[i].enabled(d.current) {
			enabled = append(enabled, &gates[i])
		}
	}
	d.mu.Unlock()

	// Listen runs unlocked: a target may deliver a signal while registering.
	var detach []func()
	if d.target != nil {
		for _, g := range enabled {
			detach = append(detach, d.target.Listen(g.kind, func(s *Signal) {
				d.observe(g, gen, s)
			}))
		}
	}

	d.mu.Lock()
	if d.generation != gen {
		// The session ended while attaching.
		d.mu.Unlock()
		runDetach(detach)
	} else {
		d.detach = append(d.detach, detach...)
		d.mu.Unlock()
	}

	if r := d.config.recorder; r != nil {
		r.SessionStarted()
	}
	return true
}

// EndSession deactivates the detector and detaches every listener. It
// reports whether a session was active.
func (d *Detector) EndSession() bool {
	d.mu.Lock()
	wasActive := d.active
	d.active = false
	d.generation++
	detach := d.detach
	d.detach = nil
	d.mu.Unlock()

	runDetach(detach)

	if wasActive {
		if r := d.config.recorder; r != nil {
			r.SessionEnded()
		}
	}
	return wasActive
}

// Subscribe registers a violation listener. Past violations are not
// replayed. A nil handler is ignored and yields a nil subscription.
func (d *Detector) Subscribe(h Handler) *Subscription {
	return d.subscribers.Add(h)
}

// Unsubscribe removes a violation listener. Unknown, nil or already removed
// subscriptions are ignored.
func (d *Detector) Unsubscribe(sub *Subscription) {
	d.subscribers.Remove(sub)
}

// Session returns a snapshot of the session state.
func (d *Detector) Session() Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Session{Active: d.active, Config: d.current, ViolationCount: d.count}
}

// Active reports whether a session is running.
func (d *Detector) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// ViolationCount returns the number of violations in the current or last
// session.
func (d *Detector) ViolationCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Config returns the last merged config.
func (d *Detector) Config() Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Threshold returns the devtools resize threshold in pixels.
func (d *Detector) Threshold() int {
	return d.config.threshold
}

// Close ends any session and drops every subscriber.
func (d *Detector) Close() {
	d.EndSession()
	d.subscribers.Clear()
}

func runDetach(detach []func()) {
	for _, cancel := range detach {
		if cancel != nil {
			cancel()
		}
	}
}

// observe turns a signal into a violation when the session that attached
// the listener is still active.
func (d *Detector) observe(g *gate, gen uint64, s *Signal) {
	d.mu.Lock()
	if !d.active || d.generation != gen {
		d.mu.Unlock()
		return
	}
	kind, message, ok := g.translate(s, d.config.threshold)
	if !ok {
		d.mu.Unlock()
		return
	}
	if g.prevent {
		s.PreventDefault()
	}
	d.count++
	v := Violation{
		Type:      kind,
		Timestamp: d.config.now().UnixMilli(),
		Message:   message,
	}
	d.mu.Unlock()

	if r := d.config.recorder; r != nil {
		r.ViolationRecorded(string(kind))
	}
	d.dispatcher.DispatchAll(v, d.subscribers.Snapshot())
}

func (d *Detector) reportFault(v Violation, err *dispatch.FaultError) {
	logger := d.config.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("violation listener failed",
		"violation", string(v.Type),
		"subscription", err.SubscriptionID,
		"error", err,
	)

	if r := d.config.recorder; r != nil {
		r.ViolationListenerFault()
	}
	if h := d.config.faultHandler; h != nil {
		h(v, err)
	}
}
