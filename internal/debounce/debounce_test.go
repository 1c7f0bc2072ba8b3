package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	var calls atomic.Int32
	d := New(30*time.Millisecond, func() { calls.Add(1) })

	for range 10 {
		d.Call()
	}
	assert.True(t, d.Pending())

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_SpacedCalls(t *testing.T) {
	var calls atomic.Int32
	d := New(20*time.Millisecond, func() { calls.Add(1) })

	for i := int32(1); i <= 3; i++ {
		d.Call()
		assert.Eventually(t, func() bool { return calls.Load() == i }, time.Second, 5*time.Millisecond)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	var calls atomic.Int32
	d := New(20*time.Millisecond, func() { calls.Add(1) })

	d.Call()
	d.Cancel()
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_Flush(t *testing.T) {
	var calls atomic.Int32
	d := New(time.Hour, func() { calls.Add(1) })

	d.Flush()
	assert.Equal(t, int32(0), calls.Load(), "nothing pending")

	d.Call()
	d.Flush()
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_Stop(t *testing.T) {
	var calls atomic.Int32
	d := New(10*time.Millisecond, func() { calls.Add(1) })

	d.Call()
	d.Stop()
	d.Call()
	time.Sleep(40 * time.Millisecond)

	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, d.Pending())
}

func TestThrottler_LeadingAndTrailing(t *testing.T) {
	var calls atomic.Int32
	th := NewThrottler(40*time.Millisecond, func() { calls.Add(1) })

	th.Call()
	assert.Equal(t, int32(1), calls.Load(), "first call runs at once")

	for range 5 {
		th.Call()
	}
	assert.Equal(t, int32(1), calls.Load())

	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load(), "the burst collapses into one trailing run")
}

func TestThrottler_Cancel(t *testing.T) {
	var calls atomic.Int32
	th := NewThrottler(30*time.Millisecond, func() { calls.Add(1) })

	th.Call()
	th.Call()
	th.Cancel()
	time.Sleep(70 * time.Millisecond)

	assert.Equal(t, int32(1), calls.Load())
}

func TestThrottler_FakeClock(t *testing.T) {
	var calls atomic.Int32
	now := time.Unix(0, 0)
	th := NewThrottler(time.Second, func() { calls.Add(1) })
	th.now = func() time.Time { return now }

	th.Call()
	now = now.Add(2 * time.Second)
	th.Call()

	assert.Equal(t, int32(2), calls.Load(), "calls an interval apart both lead")
}
