package event

import (
	"github.com/dshills/vigil/internal/event/dispatch"
	"github.com/dshills/vigil/internal/event/topic"
)

// Handler receives records from the bus.
type Handler = dispatch.Handler[Record]

// HandlerFunc is a function adapter for Handler.
type HandlerFunc = dispatch.HandlerFunc[Record]

// Subscription is the handle returned by Subscribe and SubscribeAll.
type Subscription = dispatch.Subscription

// FaultHandler is called when a listener fails during fan-out.
type FaultHandler func(rec Record, err error)

// Recorder receives bus measurements. internal/metrics implements it.
type Recorder interface {
	EventEmitted(name string)
	EventListenerFault(name string)
	EventHistorySize(n int)
}

// globalKey is the registry key reported by global subscriptions.
const globalKey = topic.WildcardMulti

// Stats contains event bus statistics.
type Stats struct {
	// Emitted is the total number of records emitted, including control events.
	Emitted uint64

	// Delivered is the number of successful listener invocations.
	Delivered uint64

	// Faults is the number of listener invocations that errored or panicked.
	Faults uint64

	// HistoryLen is the current history length.
	HistoryLen int

	// HistoryCap is the history capacity.
	HistoryCap int

	// TopicListeners is the number of per-name subscriptions.
	TopicListeners int

	// GlobalListeners is the number of global subscriptions.
	GlobalListeners int
}
