package event

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dshills/vigil/internal/event/dispatch"
	"github.com/dshills/vigil/internal/event/topic"
	"github.com/dshills/vigil/internal/ring"
)

// Bus is the in-process event bus.
type Bus struct {
	mu     sync.RWMutex
	topics map[topic.Name]*dispatch.Set[Record]
	global *dispatch.Set[Record]

	history    *ring.Buffer[Record]
	dispatcher *dispatch.SyncDispatcher[Record]
	config     busConfig

	emitted atomic.Uint64
}

// NewBus creates a new event bus with the given options.
func NewBus(opts ...BusOption) *Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	b := &Bus{
		topics:  make(map[topic.Name]*dispatch.Set[Record]),
		global:  dispatch.NewSet[Record](globalKey),
		history: ring.New[Record](config.historyCapacity),
		config:  config,
	}
	b.dispatcher = dispatch.NewSyncDispatcher(
		dispatch.WithFaultHandler(b.reportFault),
	)
	return b
}

// Emit publishes an event with no source. See EmitFrom.
func (b *Bus) Emit(name topic.Name, data any) Record {
	return b.EmitFrom("", name, data)
}

// EmitFrom builds a record, appends it to history and delivers it
// synchronously to the listeners of name and then to global listeners.
// Listener failures are isolated and never returned to the caller.
func (b *Bus) EmitFrom(source string, name topic.Name, data any) Record {
	rec := b.newRecord(source, name, data)

	b.history.Push(rec)
	if r := b.config.recorder; r != nil {
		r.EventHistorySize(b.history.Len())
	}

	b.deliver(rec)
	return rec
}

// Subscribe registers a listener for one event name.
// A nil handler is ignored and yields a nil subscription.
func (b *Bus) Subscribe(name topic.Name, h Handler) *Subscription {
	if h == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.topics[name]
	if !ok {
		set = dispatch.NewSet[Record](string(name))
		set.OnEmpty(func() { b.prune(name, set) })
		b.topics[name] = set
	}
	return set.Add(h)
}

// Unsubscribe removes a per-name subscription. Unknown, nil or already
// removed subscriptions are ignored.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.RLock()
	set := b.topics[topic.Name(sub.Key())]
	b.mu.RUnlock()

	if set != nil {
		set.Remove(sub)
	}
}

// prune drops the set for name once its last subscription is gone, however
// that subscription was removed.
func (b *Bus) prune(name topic.Name, set *dispatch.Set[Record]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.topics[name] == set && set.Len() == 0 {
		delete(b.topics, name)
	}
}

// SubscribeAll registers a listener that receives every emitted record,
// including control events.
func (b *Bus) SubscribeAll(h Handler) *Subscription {
	return b.global.Add(h)
}

// UnsubscribeAll removes a global subscription. Unknown, nil or already
// removed subscriptions are ignored.
func (b *Bus) UnsubscribeAll(sub *Subscription) {
	b.global.Remove(sub)
}

// History returns a snapshot of the retained records, oldest first.
func (b *Bus) History() []Record {
	return b.history.Snapshot()
}

// ClearHistory empties the history and then delivers the reserved
// topic.ClearHistory control event to current listeners. The control event
// is not itself retained, so History is empty afterwards.
func (b *Bus) ClearHistory() {
	b.history.Clear()
	if r := b.config.recorder; r != nil {
		r.EventHistorySize(0)
	}

	b.deliver(b.newRecord(ClearHistorySource, topic.ClearHistory, nil))
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	topicListeners := 0
	for _, set := range b.topics {
		topicListeners += set.Len()
	}
	b.mu.RUnlock()

	ds := b.dispatcher.Stats()
	return Stats{
		Emitted:         b.emitted.Load(),
		Delivered:       ds.Succeeded,
		Faults:          ds.Faults(),
		HistoryLen:      b.history.Len(),
		HistoryCap:      b.history.Cap(),
		TopicListeners:  topicListeners,
		GlobalListeners: b.global.Len(),
	}
}

// newRecord stamps a new record with a fresh id and the current time.
func (b *Bus) newRecord(source string, name topic.Name, data any) Record {
	return Record{
		ID:        b.config.newID(),
		Name:      name,
		Data:      data,
		Timestamp: b.config.now().UnixMilli(),
		Source:    source,
	}
}

// deliver fans a record out to name listeners, then global listeners.
// No bus lock is held while listeners run.
func (b *Bus) deliver(rec Record) {
	b.emitted.Add(1)
	if r := b.config.recorder; r != nil {
		r.EventEmitted(string(rec.Name))
	}

	b.mu.RLock()
	set := b.topics[rec.Name]
	b.mu.RUnlock()

	if set != nil {
		b.dispatcher.DispatchAll(rec, set.Snapshot())
	}
	b.dispatcher.DispatchAll(rec, b.global.Snapshot())
}

// reportFault sends a listener failure to the diagnostic channel.
func (b *Bus) reportFault(rec Record, err *dispatch.FaultError) {
	logger := b.config.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("event listener failed",
		"event", string(rec.Name),
		"event_id", rec.ID,
		"subscription", err.SubscriptionID,
		"error", err,
	)

	if r := b.config.recorder; r != nil {
		r.EventListenerFault(string(rec.Name))
	}
	if h := b.config.faultHandler; h != nil {
		h(rec, err)
	}
}
