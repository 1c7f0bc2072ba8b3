// Package debounce coalesces bursts of calls.
//
// Debouncer waits for a quiet period and then runs its callback once; the
// config watcher uses it to fold the several filesystem events an editor
// produces per save into one reload. Throttler runs its callback at most
// once per interval; the terminal UI uses it to cap redraws while events
// stream in.
//
// All methods are safe for concurrent use. A callback never runs
// concurrently with itself from the same Debouncer.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs a callback once after calls stop for a delay.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	pending  bool
	stopped  bool
	seq      uint64 // invalidates timers that fired after a newer Call
	callback func()
}

// New creates a debouncer that runs fn delay after the last Call.
func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, callback: fn}
}

// Call (re)starts the quiet period.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = true
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Flush runs a pending callback now instead of waiting.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	run := d.pending && !d.stopped
	d.pending = false
	d.mu.Unlock()

	if run && d.callback != nil {
		d.callback()
	}
}

// Cancel drops a pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Stop cancels any pending callback and ignores later calls.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

// Pending reports whether a callback is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if !d.pending || d.seq != seq || d.stopped {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	if d.callback != nil {
		d.callback()
	}
}

// Throttler runs a callback at most once per interval. The first call in
// an idle period runs at once; calls inside the interval collapse into one
// trailing run at its end.
type Throttler struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	timer    *time.Timer
	pending  bool
	seq      uint64
	callback func()
	now      func() time.Time
}

// NewThrottler creates a throttler for fn.
func NewThrottler(interval time.Duration, fn func()) *Throttler {
	return &Throttler{interval: interval, callback: fn, now: time.Now}
}

// Call runs the callback now or schedules a trailing run.
func (t *Throttler) Call() {
	t.mu.Lock()
	now := t.now()
	elapsed := now.Sub(t.last)

	if elapsed >= t.interval && t.timer == nil {
		t.last = now
		t.mu.Unlock()
		t.callback()
		return
	}

	t.pending = true
	if t.timer == nil {
		t.seq++
		seq := t.seq
		t.timer = time.AfterFunc(t.interval-elapsed, func() { t.trail(seq) })
	}
	t.mu.Unlock()
}

// Cancel drops a scheduled trailing run.
func (t *Throttler) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
	t.pending = false
}

func (t *Throttler) trail(seq uint64) {
	t.mu.Lock()
	if t.seq != seq {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	run := t.pending
	t.pending = false
	if run {
		t.last = t.now()
	}
	t.mu.Unlock()

	if run {
		t.callback()
	}
}
