package identity

import (
	"sync"

	"emarket/internal/models"
)

// Change reports an identity signing in or out
type Change struct {
	Identity models.Identity
	SignedIn bool
}

// Watcher fans identity changes out to subscribers
type Watcher struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Change)
}

// NewWatcher creates a watcher without subscribers
func NewWatcher() *Watcher {
	return &Watcher{subs: make(map[int]func(Change))}
}

// Subscribe registers fn and returns the function that unsubscribes it
func (w *Watcher) Subscribe(fn func(Change)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			delete(w.subs, id)
		})
	}
}

// Publish delivers c to every subscriber, outside the lock
func (w *Watcher) Publish(c Change) {
	w.mu.Lock()
	fns := make([]func(Change), 0, len(w.subs))
	for _, fn := range w.subs {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
