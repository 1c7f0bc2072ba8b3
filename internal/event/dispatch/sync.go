package dispatch

import (
	"sync/atomic"
	"time"
)

// SyncDispatcher delivers items to listeners synchronously in the caller's
// goroutine, isolating listener faults.
type SyncDispatcher[T any] struct {
	executor     *Executor[T]
	faultHandler FaultHandler[T]

	// Stats
	dispatched  atomic.Uint64
	succeeded   atomic.Uint64
	failed      atomic.Uint64
	panicked    atomic.Uint64
	totalTimeNs atomic.Int64
}

// SyncOption configures a SyncDispatcher.
type SyncOption[T any] func(*SyncDispatcher[T])

// WithFaultHandler sets the callback invoked for each failed delivery.
func WithFaultHandler[T any](h FaultHandler[T]) SyncOption[T] {
	return func(d *SyncDispatcher[T]) {
		d.faultHandler = h
	}
}

// NewSyncDispatcher creates a new synchronous dispatcher.
func NewSyncDispatcher[T any](opts ...SyncOption[T]) *SyncDispatcher[T] {
	d := &SyncDispatcher[T]{executor: NewExecutor[T]()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers an item to one listener.
func (d *SyncDispatcher[T]) Dispatch(item T, entry Entry[T]) Result {
	d.dispatched.Add(1)

	result := d.executor.Execute(item, entry.Handler)
	d.totalTimeNs.Add(result.Duration.Nanoseconds())

	switch {
	case result.Panicked:
		d.panicked.Add(1)
	case result.Error != nil:
		d.failed.Add(1)
	default:
		d.succeeded.Add(1)
		return result
	}

	if d.faultHandler != nil {
		fe := newFaultError(entry.Sub, result)
		func() {
			defer func() { _ = recover() }()
			d.faultHandler(item, fe)
		}()
	}
	return result
}

// DispatchAll delivers an item to every entry in order. A failing listener
// never stops delivery to the remaining ones. Entries whose subscription was
// cancelled after the snapshot was taken are skipped.
func (d *SyncDispatcher[T]) DispatchAll(item T, entries []Entry[T]) []Result {
	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		if entry.Sub != nil && !entry.Sub.Active() {
			continue
		}
		results = append(results, d.Dispatch(item, entry))
	}
	return results
}

// Stats returns dispatch statistics.
func (d *SyncDispatcher[T]) Stats() SyncDispatcherStats {
	dispatched := d.dispatched.Load()
	totalNs := d.totalTimeNs.Load()

	var avgNs int64
	if dispatched > 0 {
		avgNs = totalNs / int64(dispatched)
	}

	return SyncDispatcherStats{
		Dispatched:    dispatched,
		Succeeded:     d.succeeded.Load(),
		Failed:        d.failed.Load(),
		Panicked:      d.panicked.Load(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}

// ResetStats resets all statistics to zero.
func (d *SyncDispatcher[T]) ResetStats() {
	d.dispatched.Store(0)
	d.succeeded.Store(0)
	d.failed.Store(0)
	d.panicked.Store(0)
	d.totalTimeNs.Store(0)
}

// SyncDispatcherStats contains statistics for a sync dispatcher.
type SyncDispatcherStats struct {
	// Dispatched is the total number of listener invocations.
	Dispatched uint64

	// Succeeded is the number of listeners that returned nil.
	Succeeded uint64

	// Failed is the number of listeners that returned errors.
	Failed uint64

	// Panicked is the number of listeners that panicked.
	Panicked uint64

	// TotalDuration is the cumulative time spent in listeners.
	TotalDuration time.Duration

	// AvgDuration is the average listener execution time.
	AvgDuration time.Duration
}

// Faults returns the number of failed deliveries, errors and panics combined.
func (s SyncDispatcherStats) Faults() uint64 {
	return s.Failed + s.Panicked
}
