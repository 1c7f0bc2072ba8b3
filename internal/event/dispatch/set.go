package dispatch

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Subscription is the handle returned when a listener is added to a Set.
// It is the listener's identity: the same function added twice yields two
// independent subscriptions.
type Subscription struct {
	id        uint64
	key       string
	cancelled atomic.Bool
	remove    func(*Subscription) bool
}

// ID returns the subscription identifier, unique within its Set.
func (s *Subscription) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Key returns the routing key the subscription was registered under.
func (s *Subscription) Key() string {
	if s == nil {
		return ""
	}
	return s.key
}

// Active returns true until the subscription is cancelled.
func (s *Subscription) Active() bool {
	return s != nil && !s.cancelled.Load()
}

// Cancel removes the subscription from its set. Safe to call repeatedly.
func (s *Subscription) Cancel() {
	if s == nil || s.cancelled.Swap(true) {
		return
	}
	if s.remove != nil {
		s.remove(s)
	}
}

// Entry pairs a subscription with its listener.
type Entry[T any] struct {
	Sub     *Subscription
	Handler Handler[T]
}

// Set is an ordered listener collection. It is safe for concurrent use.
type Set[T any] struct {
	mu     sync.Mutex
	key    string
	order  *list.List // of Entry[T], registration order
	byID   map[uint64]*list.Element
	nextID uint64

	// snapshot caches the current listener slice; nil when stale.
	snapshot []Entry[T]

	onEmpty func()
}

// NewSet creates an empty set whose subscriptions report the given key.
func NewSet[T any](key string) *Set[T] {
	return &Set[T]{
		key:   key,
		order: list.New(),
		byID:  make(map[uint64]*list.Element),
	}
}

// Key returns the set's routing key.
func (s *Set[T]) Key() string {
	return s.key
}

// OnEmpty sets a callback run after a removal leaves the set empty, whether
// through Remove or Subscription.Cancel. It runs without the set's lock held.
func (s *Set[T]) OnEmpty(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEmpty = fn
}

// Add registers a listener and returns its subscription.
// A nil handler is ignored and yields a nil subscription.
func (s *Set[T]) Add(h Handler[T]) *Subscription {
	if h == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	sub := &Subscription{id: s.nextID, key: s.key}
	sub.remove = s.remove
	s.byID[sub.id] = s.order.PushBack(Entry[T]{Sub: sub, Handler: h})
	s.snapshot = nil
	return sub
}

// Remove unregisters a subscription. It reports whether the subscription was
// registered; unknown or already-removed subscriptions are a no-op.
func (s *Set[T]) Remove(sub *Subscription) bool {
	if sub == nil {
		return false
	}
	return s.remove(sub)
}

func (s *Set[T]) remove(sub *Subscription) bool {
	s.mu.Lock()
	el, ok := s.byID[sub.id]
	if !ok || el.Value.(Entry[T]).Sub != sub {
		s.mu.Unlock()
		return false
	}
	sub.cancelled.Store(true)
	s.order.Remove(el)
	delete(s.byID, sub.id)
	s.snapshot = nil

	var onEmpty func()
	if s.order.Len() == 0 {
		onEmpty = s.onEmpty
	}
	s.mu.Unlock()

	if onEmpty != nil {
		onEmpty()
	}
	return true
}

// Snapshot returns the registered listeners in registration order.
// The returned slice must not be modified.
func (s *Set[T]) Snapshot() []Entry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil && s.order.Len() > 0 {
		snap := make([]Entry[T], 0, s.order.Len())
		for el := s.order.Front(); el != nil; el = el.Next() {
			snap = append(snap, el.Value.(Entry[T]))
		}
		s.snapshot = snap
	}
	return s.snapshot
}

// Len returns the number of registered listeners.
func (s *Set[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Clear removes every listener, cancelling their subscriptions.
func (s *Set[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for el := s.order.Front(); el != nil; el = el.Next() {
		el.Value.(Entry[T]).Sub.cancelled.Store(true)
	}
	s.order.Init()
	s.byID = make(map[uint64]*list.Element)
	s.snapshot = nil
}
