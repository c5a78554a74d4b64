package sessionstore

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/metrics"
	"github.com/kailas-cloud/omnisearch/internal/usecase/session"
)

// Store keeps live sessions in memory with a sliding TTL.
type Store struct {
	cache *cache.Cache
}

// New creates a session store. Sessions idle for ttl are evicted.
func New(ttl time.Duration) *Store {
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(string, interface{}) {
		metrics.SessionsActive.Dec()
	})
	return &Store{cache: c}
}

// Save stores s, replacing any session with the same id.
func (r *Store) Save(s *session.Session) {
	if _, found := r.cache.Get(s.ID()); !found {
		metrics.SessionsActive.Inc()
	}
	r.cache.Set(s.ID(), s, cache.DefaultExpiration)
}

// Get returns the session and refreshes its TTL. Replace only touches a live entry,
// so a session deleted or evicted after the lookup stays gone.
func (r *Store) Get(id string) (*session.Session, error) {
	x, found := r.cache.Get(id)
	if !found {
		return nil, domain.ErrSessionNotFound
	}
	s := x.(*session.Session)
	if err := r.cache.Replace(id, s, cache.DefaultExpiration); err != nil {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session.
func (r *Store) Delete(id string) error {
	if _, found := r.cache.Get(id); !found {
		return domain.ErrSessionNotFound
	}
	r.cache.Delete(id)
	return nil
}

// Count returns the number of live sessions.
func (r *Store) Count() int {
	return r.cache.ItemCount()
}
