package event

import (
	"sync"

	"github.com/dshills/vigil/internal/event/topic"
)

// Subscriber tracks the subscriptions of one component so they can be
// released together.
type Subscriber struct {
	bus *Bus

	mu     sync.Mutex
	topics []*Subscription
	global []*Subscription
	closed bool
}

// NewSubscriber creates a new Subscriber wrapping the given bus.
func NewSubscriber(bus *Bus) *Subscriber {
	return &Subscriber{bus: bus}
}

// Subscribe registers h for one event name. It returns nil when h is nil
// or the subscriber is closed.
func (s *Subscriber) Subscribe(name topic.Name, h Handler) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	sub := s.bus.Subscribe(name, h)
	if sub != nil {
		s.topics = append(s.topics, sub)
	}
	return sub
}

// SubscribeFunc registers a function for one event name.
func (s *Subscriber) SubscribeFunc(name topic.Name, fn func(Record) error) *Subscription {
	if fn == nil {
		return nil
	}
	return s.Subscribe(name, HandlerFunc(fn))
}

// SubscribeAll registers h for every record.
func (s *Subscriber) SubscribeAll(h Handler) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	sub := s.bus.SubscribeAll(h)
	if sub != nil {
		s.global = append(s.global, sub)
	}
	return sub
}

// SubscribeOnce registers h for the next record named name only.
func (s *Subscriber) SubscribeOnce(name topic.Name, h Handler) *Subscription {
	if h == nil {
		return nil
	}

	var (
		mu   sync.Mutex
		sub  *Subscription
		once sync.Once
	)
	// Hold mu until sub is assigned so a concurrent emit cannot observe nil.
	mu.Lock()
	defer mu.Unlock()

	sub = s.Subscribe(name, HandlerFunc(func(rec Record) error {
		var err error
		once.Do(func() {
			mu.Lock()
			self := sub
			mu.Unlock()
			s.Unsubscribe(self)
			err = h.Handle(rec)
		})
		return err
	}))
	return sub
}

// Unsubscribe releases one tracked subscription.
func (s *Subscriber) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	s.mu.Lock()
	var inTopics, inGlobal bool
	s.topics, inTopics = remove(s.topics, sub)
	s.global, inGlobal = remove(s.global, sub)
	s.mu.Unlock()

	switch {
	case inTopics:
		s.bus.Unsubscribe(sub)
	case inGlobal:
		s.bus.UnsubscribeAll(sub)
	}
}

// Count returns the number of tracked subscriptions.
func (s *Subscriber) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.topics) + len(s.global)
}

// Close releases every subscription and prevents new ones.
func (s *Subscriber) Close() {
	s.mu.Lock()
	topics, global := s.topics, s.global
	s.topics, s.global = nil, nil
	s.closed = true
	s.mu.Unlock()

	for _, sub := range topics {
		s.bus.Unsubscribe(sub)
	}
	for _, sub := range global {
		s.bus.UnsubscribeAll(sub)
	}
}

func remove(subs []*Subscription, sub *Subscription) ([]*Subscription, bool) {
	for i, s := range subs {
		if s == sub {
			return append(subs[:i], subs[i+1:]...), true
		}
	}
	return subs, false
}
