package util

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of calls into a single trailing call. Only the
// function passed with the last Trigger of a burst runs, once the window has
// passed without another Trigger.
type Debouncer struct {
	mu      sync.Mutex
	wait    time.Duration
	timer   *time.Timer
	pending func()
	stopped bool
}

func NewDebouncer(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Trigger schedules f, replacing whatever was scheduled before it.
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.pending = f
	var trigger *time.Timer
	trigger = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		if trigger != d.timer {
			d.mu.Unlock()
			return
		}
		run := d.pending
		d.pending = nil
		d.timer = nil
		d.mu.Unlock()

		if run != nil {
			run()
		}
	})
	d.timer = trigger
}

// Pending reports whether a call is waiting for its window to pass.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Flush runs the pending call, if any, on the calling goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	run := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if run != nil {
		run()
	}
}

// Stop drops the pending call and ignores every later Trigger.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
