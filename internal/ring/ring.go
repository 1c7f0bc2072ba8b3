// Package ring provides a bounded FIFO buffer used for event and log history.
package ring

import "sync"

// DefaultCapacity is the history size used when no capacity is configured.
const DefaultCapacity = 1000

// Buffer is a fixed-capacity FIFO. When full, pushing evicts the oldest item.
// It is safe for concurrent use.
type Buffer[T any] struct {
	mu    sync.RWMutex
	items []T
	head  int // index of the oldest item
	size  int
}

// New creates a buffer holding at most capacity items.
// A non-positive capacity falls back to DefaultCapacity.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Push appends an item, evicting the oldest one if the buffer is full.
// It reports whether an item was evicted.
func (b *Buffer[T]) Push(item T) (evicted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.items)
	if b.size < capacity {
		b.items[(b.head+b.size)%capacity] = item
		b.size++
		return false
	}

	b.items[b.head] = item
	b.head = (b.head + 1) % capacity
	return true
}

// Snapshot returns a copy of the buffered items, oldest first.
func (b *Buffer[T]) Snapshot() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]T, b.size)
	capacity := len(b.items)
	for i := 0; i < b.size; i++ {
		out[i] = b.items[(b.head+i)%capacity]
	}
	return out
}

// Len returns the number of buffered items.
func (b *Buffer[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Cap returns the buffer capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.items)
}

// Clear drops every item and reports how many were removed.
func (b *Buffer[T]) Clear() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.size
	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.head = 0
	b.size = 0
	return n
}
