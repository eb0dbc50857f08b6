package session

import (
	"context"
	"sync"
	"time"

	"emarket/internal/identity"
	"emarket/internal/models"
	"emarket/internal/service"
	"emarket/internal/timer"
	"emarket/internal/util"

	"go.uber.org/zap"
)

// Registry holds the live session of every signed-in identity
type Registry struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	storefront   *service.Storefront
	checkouts    *service.CheckoutService
	sched        timer.Scheduler
	dismissAfter time.Duration
	unsubscribe  func()
	logger       *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(
	storefront *service.Storefront,
	checkouts *service.CheckoutService,
	sched timer.Scheduler,
	dismissAfter time.Duration,
) *Registry {
	return &Registry{
		sessions:     make(map[string]*Session),
		storefront:   storefront,
		checkouts:    checkouts,
		sched:        sched,
		dismissAfter: dismissAfter,
		logger:       util.GetLogger(),
	}
}

// Watch follows identity changes: a sign-in opens a session, a sign-out
// closes it. Only one watcher is followed at a time.
func (r *Registry) Watch(w *identity.Watcher) {
	unsubscribe := w.Subscribe(func(c identity.Change) {
		if c.SignedIn {
			r.Get(context.Background(), c.Identity)
			return
		}
		r.Drop(c.Identity.ID)
	})

	r.mu.Lock()
	prev := r.unsubscribe
	r.unsubscribe = unsubscribe
	r.mu.Unlock()

	if prev != nil {
		prev()
	}
}

// Get returns the session of id, opening one if needed. A known session
// picks up display name changes.
func (r *Registry) Get(ctx context.Context, id models.Identity) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id.ID]; ok {
		s.mu.Lock()
		s.identity = id
		s.mu.Unlock()
		return s
	}

	s := newSession(ctx, id, r.storefront, r.checkouts, r.sched, r.dismissAfter)
	r.sessions[id.ID] = s
	r.logger.Info("Session opened", zap.String("identity_id", id.ID))
	return s
}

// Lookup returns an existing session
func (r *Registry) Lookup(identityID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[identityID]
	return s, ok
}

// Drop closes and forgets the session of identityID
func (r *Registry) Drop(identityID string) {
	r.mu.Lock()
	s, ok := r.sessions[identityID]
	delete(r.sessions, identityID)
	r.mu.Unlock()

	if ok {
		s.Close()
		r.logger.Info("Session closed", zap.String("identity_id", identityID))
	}
}

// Len reports the number of open sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops watching and closes every session
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	for _, s := range sessions {
		s.Close()
	}
}
