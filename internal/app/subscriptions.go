package app

import (
	"sync"

	"github.com/dshills/vigil/internal/event"
	"github.com/dshills/vigil/internal/event/topic"
	"github.com/dshills/vigil/internal/logging"
	"github.com/dshills/vigil/internal/proctor"
)

// Event names published by the application.
const (
	TopicViolation      topic.Name = "proctor:violation"
	TopicSessionStarted topic.Name = "proctor:session_started"
	TopicSessionEnded   topic.Name = "proctor:session_ended"
	TopicConfigReloaded topic.Name = "config:reloaded"
)

// Event sources used by the application.
const (
	SourceProctor = "ProctorService"
	SourceConfig  = "ConfigService"
)

// subscriptionManager owns the subscriptions that bridge components.
type subscriptionManager struct {
	mu         sync.Mutex
	violations []*proctor.Subscription
	bus        *event.Subscriber
	app        *Application
}

func newSubscriptionManager(app *Application) *subscriptionManager {
	return &subscriptionManager{app: app, bus: event.NewSubscriber(app.bus)}
}

// setup registers all bridges.
func (sm *subscriptionManager) setup() {
	sm.subscribeViolations()
	sm.subscribeHistoryCleared()
}

// subscribeHistoryCleared notes bus history resets in the log.
func (sm *subscriptionManager) subscribeHistoryCleared() {
	sm.bus.SubscribeFunc(topic.ClearHistory, func(event.Record) error {
		sm.app.logger.Info("event history cleared", logging.InModule("event"))
		return nil
	})
}

// subscribeViolations forwards every violation to the bus and the logger.
func (sm *subscriptionManager) subscribeViolations() {
	sub := sm.app.detector.Subscribe(proctor.HandlerFunc(sm.handleViolation))

	sm.mu.Lock()
	sm.violations = append(sm.violations, sub)
	sm.mu.Unlock()
}

func (sm *subscriptionManager) handleViolation(v proctor.Violation) error {
	sm.app.proctorEvents.Emit(TopicViolation, v)
	sm.app.logger.Warn(v.Message,
		logging.InModule("proctor"),
		logging.WithData(map[string]any{"type": string(v.Type), "timestamp": v.Timestamp}),
	)
	return nil
}

// cleanup removes every bridge subscription.
func (sm *subscriptionManager) cleanup() {
	sm.mu.Lock()
	subs := sm.violations
	sm.violations = nil
	sm.mu.Unlock()

	for _, sub := range subs {
		sm.app.detector.Unsubscribe(sub)
	}
	sm.bus.Close()
}

// sessionEvent is the payload of session start and end events.
type sessionEvent struct {
	Config         proctor.Config `json:"config"`
	ViolationCount int            `json:"violationCount"`
}

func (app *Application) publishSession(name topic.Name) event.Record {
	s := app.detector.Session()
	return app.proctorEvents.Emit(name, sessionEvent{
		Config:         s.Config,
		ViolationCount: s.ViolationCount,
	})
}
