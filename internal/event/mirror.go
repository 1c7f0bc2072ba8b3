package event

import "sync"

// HistoryMirror keeps a local copy of bus history for presentation
// consumers. It seeds from History, appends pushed records and resets when
// the clear-history control event arrives instead of appending it.
type HistoryMirror struct {
	mu       sync.Mutex
	bus      *Bus
	sub      *Subscription
	records  []Record
	seeded   map[string]struct{}
	capacity int
	onChange func()
}

// NewHistoryMirror subscribes to every record on bus and seeds the mirror
// from the bus history. capacity bounds the local copy; non-positive means
// the bus history capacity.
func NewHistoryMirror(bus *Bus, capacity int) *HistoryMirror {
	if capacity <= 0 {
		capacity = bus.history.Cap()
	}
	m := &HistoryMirror{
		bus:      bus,
		capacity: capacity,
		seeded:   make(map[string]struct{}),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Subscribe before seeding so nothing emitted in between is lost;
	// records already present in the seed are skipped once on arrival.
	m.sub = bus.SubscribeAll(HandlerFunc(m.handle))
	for _, rec := range bus.History() {
		m.records = append(m.records, rec)
		m.seeded[rec.ID] = struct{}{}
	}
	m.trim()
	return m
}

// OnChange sets a callback invoked after every mirror update.
func (m *HistoryMirror) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Records returns a copy of the mirrored records, oldest first.
func (m *HistoryMirror) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Len returns the number of mirrored records.
func (m *HistoryMirror) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Close unsubscribes the mirror from the bus.
func (m *HistoryMirror) Close() {
	m.bus.UnsubscribeAll(m.sub)
}

func (m *HistoryMirror) handle(rec Record) error {
	m.mu.Lock()
	switch {
	case rec.IsClearSignal():
		m.records = m.records[:0]
		clear(m.seeded)
	default:
		if _, dup := m.seeded[rec.ID]; dup {
			delete(m.seeded, rec.ID)
			m.mu.Unlock()
			return nil
		}
		m.records = append(m.records, rec)
		m.trim()
	}
	fn := m.onChange
	m.mu.Unlock()

	if fn != nil {
		fn()
	}
	return nil
}

// trim enforces the capacity. Callers hold m.mu.
func (m *HistoryMirror) trim() {
	if over := len(m.records) - m.capacity; over > 0 {
		m.records = append(m.records[:0], m.records[over:]...)
	}
}
