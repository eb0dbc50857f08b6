package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"emarket/internal/util"

	"go.uber.org/zap"
)

// Persisted keys
const (
	KeyBooks     = "books"
	KeyPurchases = "purchases"
	KeyReviews   = "reviews"
)

// DefaultPrefix namespaces every key of a storefront profile
const DefaultPrefix = "emarket_"

// RoleKey is the key holding the role chosen by an identity
func RoleKey(identityID string) string {
	return "role_" + identityID
}

// WishlistKey is the key holding the wishlist of an identity
func WishlistKey(identityID string) string {
	return "wishlist_" + identityID
}

// CartKey is the key holding the cart of an identity
func CartKey(identityID string) string {
	return "cart_" + identityID
}

// HookKey is the key caching the generated marketing hook of a book
func HookKey(bookID string) string {
	return "hook_" + bookID
}

// Family strips the identity or book suffix from a key, so per-user keys
// share one metric label
func Family(key string) string {
	if i := strings.IndexByte(key, '_'); i > 0 {
		return key[:i]
	}
	return key
}

// Backend persists raw values by key
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Store is the key-value persistence of named collections
type Store struct {
	backend Backend
	prefix  string
	logger  *zap.Logger
}

// New wraps a backend. Keys are namespaced with prefix.
func New(backend Backend, prefix string) *Store {
	return &Store{
		backend: backend,
		prefix:  prefix,
		logger:  util.GetLogger(),
	}
}

// Close closes the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

// Save writes value under key as JSON
func (s *Store) Save(ctx context.Context, key string, value interface{}) error {
	ctx, span := util.StartSpan(ctx, "Store.Save")
	defer span.End()

	start := time.Now()
	defer func() {
		util.StoreSaveLatency.Observe(time.Since(start).Seconds())
	}()

	data, err := json.Marshal(value)
	if err != nil {
		util.StoreSaveFailuresTotal.WithLabelValues(Family(key)).Inc()
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := s.backend.Put(ctx, s.prefix+key, data); err != nil {
		util.StoreSaveFailuresTotal.WithLabelValues(Family(key)).Inc()
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// raw fetches the stored bytes; ok is false when the value is absent or
// unreadable.
func (s *Store) raw(ctx context.Context, key string) ([]byte, bool) {
	ctx, span := util.StartSpan(ctx, "Store.Load")
	defer span.End()

	data, found, err := s.backend.Get(ctx, s.prefix+key)
	if err != nil {
		s.logger.Warn("Failed to read persisted value, using default",
			zap.String("key", key),
			zap.Error(err))
		util.StoreLoadFallbacksTotal.WithLabelValues(Family(key)).Inc()
		return nil, false
	}
	if !found {
		return nil, false
	}
	return data, true
}

// Load returns the value stored under key, or def when it is missing,
// unreadable or corrupt. It never fails.
func Load[T any](ctx context.Context, s *Store, key string, def T) T {
	data, ok := s.raw(ctx, key)
	if !ok {
		return def
	}

	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		s.logger.Warn("Persisted value is empty, using default", zap.String("key", key))
		util.StoreLoadFallbacksTotal.WithLabelValues(Family(key)).Inc()
		return def
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn("Persisted value is corrupt, using default",
			zap.String("key", key),
			zap.Error(err))
		util.StoreLoadFallbacksTotal.WithLabelValues(Family(key)).Inc()
		return def
	}
	return v
}
