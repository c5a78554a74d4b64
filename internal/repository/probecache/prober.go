package probecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/db"
	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/category"
	"github.com/kailas-cloud/omnisearch/internal/usecase/resolve"
)

const cacheKeyPrefix = "omnisearch:probe:"

// store is the consumer interface for the probe cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedProber caches positive probe results in a key-value store.
// Absence is never cached: an entity missing now may exist after the next checkpoint.
type CachedProber struct {
	inner      resolve.Prober
	store      store
	network    string
	category   category.Category
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

var _ resolve.Prober = (*CachedProber)(nil)

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner resolve.Prober,
	s store,
	network string,
	c category.Category,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedProber {
	return &CachedProber{
		inner:      inner,
		store:      s,
		network:    network,
		category:   c,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Probe returns a cached payload or calls the inner probe.
// Store failures degrade to a miss and never fail the probe.
func (c *CachedProber) Probe(ctx context.Context, input string) (domain.Payload, error) {
	key := c.cacheKey(input)

	if payload, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return payload, nil
	}

	c.incCache("miss")

	payload, err := c.inner.Probe(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", c.category, err)
	}

	if payload.Found() {
		c.putToCache(ctx, key, payload)
	}
	return payload, nil
}

func (c *CachedProber) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedProber) cacheKey(input string) string {
	h := sha256.Sum256([]byte(input))
	return cacheKeyPrefix + c.network + ":" + string(c.category) + ":" + hex.EncodeToString(h[:])
}

func (c *CachedProber) getFromCache(ctx context.Context, key string) (domain.Payload, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached probe result", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var payload domain.Payload
	if err := json.Unmarshal(data, &payload); err != nil || payload == nil {
		c.logger.Warn("Failed to parse cached probe result", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return payload, true
}

func (c *CachedProber) putToCache(ctx context.Context, key string, payload domain.Payload) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn("Failed to encode probe result", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache probe result", zap.String("key", key), zap.Error(err))
	}
}
