package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, New[int](0).Cap())
	assert.Equal(t, DefaultCapacity, New[int](-5).Cap())
	assert.Equal(t, 3, New[int](3).Cap())
}

func TestBuffer_PushSnapshotOrder(t *testing.T) {
	b := New[int](4)
	for i := 1; i <= 3; i++ {
		assert.False(t, b.Push(i))
	}
	assert.Equal(t, []int{1, 2, 3}, b.Snapshot())
	assert.Equal(t, 3, b.Len())
}

func TestBuffer_EvictsOldestFirst(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		pushes   int
		want     []int
	}{
		{"exactly full", 3, 3, []int{0, 1, 2}},
		{"one over", 3, 4, []int{1, 2, 3}},
		{"wrapped twice", 3, 8, []int{5, 6, 7}},
		{"capacity one", 1, 5, []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New[int](tt.capacity)
			evictions := 0
			for i := 0; i < tt.pushes; i++ {
				if b.Push(i) {
					evictions++
				}
			}
			assert.Equal(t, tt.want, b.Snapshot())
			assert.LessOrEqual(t, b.Len(), tt.capacity)
			assert.Equal(t, max(0, tt.pushes-tt.capacity), evictions)
		})
	}
}

func TestBuffer_SnapshotIsDefensiveCopy(t *testing.T) {
	b := New[string](2)
	b.Push("a")
	snap := b.Snapshot()
	snap[0] = "mutated"

	assert.Equal(t, []string{"a"}, b.Snapshot())
}

func TestBuffer_Clear(t *testing.T) {
	b := New[int](2)
	b.Push(1)
	b.Push(2)
	b.Push(3)

	assert.Equal(t, 2, b.Clear())
	assert.Empty(t, b.Snapshot())
	assert.Equal(t, 0, b.Len())

	b.Push(9)
	assert.Equal(t, []int{9}, b.Snapshot())
}

func TestBuffer_ConcurrentPush(t *testing.T) {
	b := New[int](100)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				b.Push(i)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 100, b.Len())
	assert.Len(t, b.Snapshot(), 100)
}
