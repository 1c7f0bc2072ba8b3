package logging

import (
	"fmt"
	"sync/atomic"

	"github.com/dshills/vigil/internal/event/dispatch"
	"github.com/dshills/vigil/internal/ring"
)

// Handler receives log entries.
type Handler = dispatch.Handler[Entry]

// HandlerFunc is a function adapter for Handler.
type HandlerFunc = dispatch.HandlerFunc[Entry]

// Subscription is the handle returned by Subscribe.
type Subscription = dispatch.Subscription

// ClearHandler is implemented by subscribers that want to know when the
// logger history is cleared.
type ClearHandler interface {
	HandleClear() error
}

// subscribersKey is the registry key reported by logger subscriptions.
const subscribersKey = "log"

// Logger records leveled entries, keeps a bounded history and fans entries
// out to subscribers. It is safe for concurrent use.
type Logger struct {
	history     *ring.Buffer[Entry]
	subscribers *dispatch.Set[Entry]
	dispatcher  *dispatch.SyncDispatcher[Entry]
	config      loggerConfig

	logged atomic.Uint64
}

// Stats contains logger statistics.
type Stats struct {
	Logged      uint64
	Delivered   uint64
	Faults      uint64
	HistoryLen  int
	Subscribers int
}

// New creates a logger with the given options.
func New(opts ...Option) *Logger {
	config := defaultLoggerConfig()
	for _, opt := range opts {
		opt(&config)
	}

	l := &Logger{
		history:     ring.New[Entry](config.historyCapacity),
		subscribers: dispatch.NewSet[Entry](subscribersKey),
		config:      config,
	}
	l.dispatcher = dispatch.NewSyncDispatcher(
		dispatch.WithFaultHandler(l.reportFault),
	)
	return l
}

// Log records an entry at the given level. It appends the entry to
// history, notifies every subscriber and mirrors the entry to the console.
// Levels outside Debug..Error are clamped to the nearest one. It never
// fails from the caller's perspective.
func (l *Logger) Log(level Level, message, module string, data any) Entry {
	e := Entry{
		ID:        l.config.newID(),
		Timestamp: l.config.now().UnixMilli(),
		Level:     level.clamp(),
		Message:   message,
		Module:    module,
		Data:      data,
	}
	l.record(e)
	return e
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, opts ...EntryOption) Entry {
	return l.logWith(LevelDebug, message, opts)
}

// Info logs an info message.
func (l *Logger) Info(message string, opts ...EntryOption) Entry {
	return l.logWith(LevelInfo, message, opts)
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, opts ...EntryOption) Entry {
	return l.logWith(LevelWarn, message, opts)
}

// Error logs an error message.
func (l *Logger) Error(message string, opts ...EntryOption) Entry {
	return l.logWith(LevelError, message, opts)
}

// Subscribe registers a listener for every future entry.
// A nil handler is ignored and yields a nil subscription.
func (l *Logger) Subscribe(h Handler) *Subscription {
	return l.subscribers.Add(h)
}

// Unsubscribe removes a subscription. Unknown, nil or already removed
// subscriptions are ignored.
func (l *Logger) Unsubscribe(sub *Subscription) {
	l.subscribers.Remove(sub)
}

// History returns a snapshot of the retained entries, oldest first.
func (l *Logger) History() []Entry {
	return l.history.Snapshot()
}

// Clear empties the history. No entry is delivered; subscribers that
// implement ClearHandler are told through HandleClear.
func (l *Logger) Clear() {
	l.history.Clear()
	if r := l.config.recorder; r != nil {
		r.LogHistorySize(0)
	}

	for _, entry := range l.subscribers.Snapshot() {
		ch, ok := entry.Handler.(ClearHandler)
		if !ok || !entry.Sub.Active() {
			continue
		}
		l.dispatcher.Dispatch(Entry{}, dispatch.Entry[Entry]{
			Sub:     entry.Sub,
			Handler: HandlerFunc(func(Entry) error { return ch.HandleClear() }),
		})
	}
}

// Console returns the configured console mirror, or nil.
func (l *Logger) Console() *Console {
	return l.config.console
}

// Stats returns current logger statistics.
func (l *Logger) Stats() Stats {
	ds := l.dispatcher.Stats()
	return Stats{
		Logged:      l.logged.Load(),
		Delivered:   ds.Succeeded,
		Faults:      ds.Faults(),
		HistoryLen:  l.history.Len(),
		Subscribers: l.subscribers.Len(),
	}
}

func (l *Logger) logWith(level Level, message string, opts []EntryOption) Entry {
	var extra Entry
	for _, opt := range opts {
		opt(&extra)
	}
	return l.Log(level, message, extra.Module, extra.Data)
}

func (l *Logger) record(e Entry) {
	l.logged.Add(1)
	l.history.Push(e)
	if r := l.config.recorder; r != nil {
		r.LogRecorded(e.Level.String())
		r.LogHistorySize(l.history.Len())
	}

	l.dispatcher.DispatchAll(e, l.subscribers.Snapshot())

	if c := l.config.console; c != nil {
		c.Write(e)
	}
}

// reportFault reports a failing subscriber outside the logger itself, so a
// broken subscriber cannot trigger more log entries.
func (l *Logger) reportFault(e Entry, err *dispatch.FaultError) {
	if r := l.config.recorder; r != nil {
		r.LogListenerFault()
	}
	if c := l.config.console; c != nil {
		c.Fault(err)
		return
	}
	fmt.Fprintf(l.config.faultOutput, "logging: %v\n", err)
}
