// Package timer provides cancellable single-slot timers on top of a
// replaceable scheduler so timing behaviour can be driven in tests.
package timer

import (
	"sync"
	"time"
)

// Timer is a pending callback
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Real returns the wall-clock scheduler
func Real() Scheduler {
	return realScheduler{}
}

// Slot holds at most one pending trigger. Scheduling replaces whatever is
// pending; a replaced callback never runs, even if its timer already fired
// and is waiting on the lock.
type Slot struct {
	mu    sync.Mutex
	sched Scheduler
	timer Timer
	gen   uint64
}

// NewSlot creates an empty slot
func NewSlot(sched Scheduler) *Slot {
	if sched == nil {
		sched = Real()
	}
	return &Slot{sched: sched}
}

// Schedule cancels any pending trigger and arms f to run after d
func (s *Slot) Schedule(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.sched.AfterFunc(d, func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		f()
	})
}

// Cancel drops the pending trigger, if any
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// Pending reports whether a trigger is armed
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
