package probecache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/db"
	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/category"
)

func TestProbe_CacheMissStoresMatch(t *testing.T) {
	inner := &mockProber{payload: domain.Payload{"id": "0x1", "version": "7"}}
	cp, ms := newTestCachedProber(t, inner)

	var stored []byte
	var storedTTL time.Duration
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		if !strings.HasPrefix(key, "omnisearch:probe:devnet:object:") {
			t.Errorf("unexpected key %q", key)
		}
		stored = value
		storedTTL = ttl
		return nil
	}

	payload, err := cp.Probe(context.Background(), "0x1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload["id"] != "0x1" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if string(stored) != `{"id":"0x1","version":"7"}` {
		t.Fatalf("unexpected cached bytes %s", stored)
	}
	if storedTTL != time.Minute {
		t.Errorf("expected ttl 1m, got %v", storedTTL)
	}
}

func TestProbe_CacheHit(t *testing.T) {
	inner := &mockProber{payload: domain.Payload{"id": "fresh"}}
	cp, ms := newTestCachedProber(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`{"id":"cached"}`), nil
	}

	payload, err := cp.Probe(context.Background(), "0x1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload["id"] != "cached" {
		t.Fatalf("expected cached payload, got %v", payload)
	}
	if inner.calls != 0 {
		t.Fatalf("inner probe must not run on a hit, ran %d times", inner.calls)
	}
}

func TestProbe_AbsenceNotCached(t *testing.T) {
	inner := &mockProber{}
	cp, ms := newTestCachedProber(t, inner)

	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		t.Error("absence must not be cached")
		return nil
	}

	payload, err := cp.Probe(context.Background(), "0x1")
	if err != nil || payload != nil {
		t.Fatalf("expected absence, got %v (%v)", payload, err)
	}
}

func TestProbe_InnerError(t *testing.T) {
	inner := &mockProber{err: errors.New("rpc down")}
	cp, _ := newTestCachedProber(t, inner)

	if _, err := cp.Probe(context.Background(), "0x1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestProbe_StoreErrorsDegrade(t *testing.T) {
	inner := &mockProber{payload: domain.Payload{"id": "0x1"}}
	cp, ms := newTestCachedProber(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpGet, Err: errors.New("conn reset")}
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return &db.Error{Op: db.OpSet, Err: errors.New("conn reset")}
	}

	payload, err := cp.Probe(context.Background(), "0x1")
	if err != nil {
		t.Fatalf("store failures must not fail the probe: %v", err)
	}
	if payload["id"] != "0x1" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestProbe_CorruptCacheEntryIsMiss(t *testing.T) {
	inner := &mockProber{payload: domain.Payload{"id": "fresh"}}
	cp, ms := newTestCachedProber(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("not json"), nil
	}

	payload, err := cp.Probe(context.Background(), "0x1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload["id"] != "fresh" || inner.calls != 1 {
		t.Fatalf("expected fresh probe result, got %v", payload)
	}
}

func TestProbe_CountsHitsAndMisses(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_probe_cache_total"}, []string{"result"})
	ms := &mockKVStore{}
	cp := New(&mockProber{}, ms, "devnet", category.Address, time.Minute, counter, zap.NewNop())

	_, _ = cp.Probe(context.Background(), "a")
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return []byte(`{"id":"a"}`), nil }
	_, _ = cp.Probe(context.Background(), "a")

	if v := testutil.ToFloat64(counter.WithLabelValues("miss")); v != 1 {
		t.Errorf("expected 1 miss, got %f", v)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("hit")); v != 1 {
		t.Errorf("expected 1 hit, got %f", v)
	}
}
