// Package memory is an in-process db.Store for single-node deployments and tests.
package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kailas-cloud/omnisearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const defaultCleanupInterval = time.Minute

// Store keeps values in a go-cache instance. Values without a TTL never expire.
type Store struct {
	cache *gocache.Cache
}

// NewStore creates an empty store. cleanup controls how often expired keys are purged.
func NewStore(cleanup time.Duration) *Store {
	if cleanup <= 0 {
		cleanup = defaultCleanupInterval
	}
	return &Store{cache: gocache.New(gocache.NoExpiration, cleanup)}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close drops every key.
func (s *Store) Close() { s.cache.Flush() }

// WaitForReady returns immediately.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

// Get retrieves a copy of the value at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	data, _ := v.([]byte)
	return append([]byte(nil), data...), nil
}

// Set stores value at key without expiration.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.cache.Set(key, append([]byte(nil), value...), gocache.NoExpiration)
	return nil
}

// SetWithTTL stores value at key for ttl.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	s.cache.Set(key, append([]byte(nil), value...), ttl)
	return nil
}
