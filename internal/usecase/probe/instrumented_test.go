package probe

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/category"
	"github.com/kailas-cloud/omnisearch/internal/metrics"
	"github.com/kailas-cloud/omnisearch/internal/usecase/resolve"
)

func TestMain(m *testing.M) {
	metrics.RegisterSearchMetrics()
	os.Exit(m.Run())
}

func TestInstrumentedProber_Match(t *testing.T) {
	inner := resolve.ProberFunc(func(_ context.Context, input string) (domain.Payload, error) {
		return domain.Payload{"id": input}, nil
	})
	p := NewInstrumentedProber(inner, "match-net", category.Address, time.Second, zap.NewNop())

	payload, err := p.Probe(context.Background(), "0x1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload["id"] != "0x1" {
		t.Fatalf("unexpected payload %v", payload)
	}
	got := testutil.ToFloat64(metrics.ProbeRequestsTotal.WithLabelValues("match-net", "address", OutcomeMatch))
	if got != 1 {
		t.Errorf("expected 1 match, got %f", got)
	}
}

func TestInstrumentedProber_Absent(t *testing.T) {
	inner := resolve.ProberFunc(func(_ context.Context, _ string) (domain.Payload, error) {
		return nil, nil
	})
	p := NewInstrumentedProber(inner, "absent-net", category.Object, 0, zap.NewNop())

	payload, err := p.Probe(context.Background(), "0x1")
	if err != nil || payload != nil {
		t.Fatalf("expected absence, got %v (%v)", payload, err)
	}
	got := testutil.ToFloat64(metrics.ProbeRequestsTotal.WithLabelValues("absent-net", "object", OutcomeAbsent))
	if got != 1 {
		t.Errorf("expected 1 absent, got %f", got)
	}
}

func TestInstrumentedProber_ErrorWrapped(t *testing.T) {
	sentinel := errors.New("boom")
	inner := resolve.ProberFunc(func(_ context.Context, _ string) (domain.Payload, error) {
		return domain.Payload{"ignored": true}, sentinel
	})
	p := NewInstrumentedProber(inner, "error-net", category.Transaction, 0, zap.NewNop())

	payload, err := p.Probe(context.Background(), "abc")
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
	if payload != nil {
		t.Fatalf("payload must be nil on error, got %v", payload)
	}
	got := testutil.ToFloat64(metrics.ProbeRequestsTotal.WithLabelValues("error-net", "transaction", OutcomeError))
	if got != 1 {
		t.Errorf("expected 1 error, got %f", got)
	}
}

func TestInstrumentedProber_Timeout(t *testing.T) {
	inner := resolve.ProberFunc(func(ctx context.Context, _ string) (domain.Payload, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	p := NewInstrumentedProber(inner, "slow-net", category.Address, 10*time.Millisecond, zap.NewNop())

	start := time.Now()
	_, err := p.Probe(context.Background(), "0x1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("timeout not applied, took %v", elapsed)
	}
}
