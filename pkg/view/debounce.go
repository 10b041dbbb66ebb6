package view

import (
	"sync"
	"time"
)

// DefaultResizeDelay is the quiet period before a resize triggers a relayout.
const DefaultResizeDelay = 150 * time.Millisecond

// Debouncer coalesces bursts of signals into one call. It keeps a single
// timer that every [Debouncer.Trigger] pushes back, so fn runs once after
// the signals have been quiet for the full delay. fn runs on the timer's
// goroutine.
type Debouncer struct {
	delay time.Duration
	fn    func()

	running sync.WaitGroup
	mu      sync.Mutex
	timer   *time.Timer
	last    time.Time
	pending bool
	stopped bool
}

// NewDebouncer returns a Debouncer calling fn after delay of quiet.
// A non-positive delay uses DefaultResizeDelay.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultResizeDelay
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger records a signal and restarts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.last = time.Now()
	d.pending = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fire)
	} else {
		d.timer.Reset(d.delay)
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	// a Trigger raced with this firing and rescheduled the timer
	if !d.pending || d.stopped || time.Since(d.last) < d.delay {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.running.Add(1)
	d.mu.Unlock()
	defer d.running.Done()
	d.fn()
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Flush runs a scheduled call immediately on the caller's goroutine.
// It does nothing when no call is pending.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
	d.running.Add(1)
	d.mu.Unlock()
	defer d.running.Done()
	d.fn()
}

// Stop cancels any scheduled call and waits for a call already running to
// return. Later triggers are ignored. Stop must not be called from fn.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.running.Wait()
}
