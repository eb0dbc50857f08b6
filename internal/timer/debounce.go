package timer

import (
	"sync"
	"time"
)

// Debouncer publishes the latest pushed value once no new value has arrived
// for the configured delay.
type Debouncer[T any] struct {
	mu      sync.Mutex
	slot    *Slot
	delay   time.Duration
	current T
	pending T
	dirty   bool
}

// NewDebouncer creates a debouncer whose effective value starts at initial
func NewDebouncer[T any](sched Scheduler, delay time.Duration, initial T) *Debouncer[T] {
	return &Debouncer[T]{
		slot:    NewSlot(sched),
		delay:   delay,
		current: initial,
	}
}

// Push records v and restarts the quiet period
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	d.pending = v
	d.dirty = true
	d.mu.Unlock()

	d.slot.Schedule(d.delay, d.apply)
}

// Current returns the effective value
func (d *Debouncer[T]) Current() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Flush applies a pending value immediately
func (d *Debouncer[T]) Flush() {
	d.slot.Cancel()
	d.apply()
}

// Stop discards a pending value
func (d *Debouncer[T]) Stop() {
	d.slot.Cancel()
	d.mu.Lock()
	d.dirty = false
	d.mu.Unlock()
}

func (d *Debouncer[T]) apply() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dirty {
		d.current = d.pending
		d.dirty = false
	}
}
