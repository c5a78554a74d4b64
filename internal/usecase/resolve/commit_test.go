package resolve

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/category"
	"github.com/kailas-cloud/omnisearch/internal/domain/route"
)

func TestCommit_FirstMatchWins(t *testing.T) {
	unknown := &mockUnknown{}
	c := NewCommitter(bindings(
		matchAll(domain.Payload{"id": "0xCAFE"}),
		matchAll(domain.Payload{"id": "0xCAFE", "type": "coin"}),
		&mockProber{},
	), unknown, zap.NewNop())
	var nav route.Recorder

	target, err := c.Commit(context.Background(), "0xCAFE", &nav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Category != category.Address || target.Path != "/addresses/0xCAFE" {
		t.Fatalf("expected address route, got %+v", target)
	}
	if nav.Count() != 1 {
		t.Fatalf("expected exactly one navigation, got %d", nav.Count())
	}
	if unknown.calls.Load() != 0 {
		t.Fatal("fallback must not run when a category matched")
	}
}

func TestCommit_EarlierCategoryBeatsFasterLaterMatch(t *testing.T) {
	txDone := make(chan struct{})
	addr := &mockProber{fn: func(_ context.Context, _ string) (domain.Payload, error) {
		<-txDone
		return domain.Payload{"id": "0xA"}, nil
	}}
	tx := &mockProber{fn: func(_ context.Context, _ string) (domain.Payload, error) {
		defer close(txDone)
		return domain.Payload{"digest": "T"}, nil
	}}
	c := NewCommitter(bindings(addr, &mockProber{}, tx), nil, zap.NewNop())
	var nav route.Recorder

	target, err := c.Commit(context.Background(), "0xA", &nav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Category != category.Address {
		t.Fatalf("expected address to win, got %q", target.Category)
	}
}

func TestCommit_CancelsLosersAfterWin(t *testing.T) {
	cancelled := make(chan struct{})
	slow := &mockProber{fn: func(ctx context.Context, _ string) (domain.Payload, error) {
		<-ctx.Done()
		close(cancelled)
		return nil, ctx.Err()
	}}
	c := NewCommitter(bindings(matchAll(domain.Payload{"id": "a"}), slow, &mockProber{}), nil, zap.NewNop())

	if _, err := c.Commit(context.Background(), "a", &route.Recorder{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-cancelled
}

func TestCommit_FallbackInvokedExactlyOnce(t *testing.T) {
	unknown := &mockUnknown{}
	c := NewCommitter(bindings(&mockProber{}, &mockProber{}, &mockProber{}), unknown, zap.NewNop())
	var nav route.Recorder

	target, err := c.Commit(context.Background(), "  nothing  ", &nav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unknown.calls.Load() != 1 {
		t.Fatalf("expected one fallback call, got %d", unknown.calls.Load())
	}
	if unknown.inputs[0] != "nothing" {
		t.Errorf("expected trimmed input, got %q", unknown.inputs[0])
	}
	if target.Kind != route.NotFound {
		t.Errorf("expected not_found, got %q", target.Kind)
	}
	if nav.Count() != 1 {
		t.Errorf("expected exactly one navigation, got %d", nav.Count())
	}
}

func TestCommit_ProbeErrorsAreAbsence(t *testing.T) {
	unknown := &mockUnknown{}
	c := NewCommitter(bindings(
		failing(errors.New("boom")),
		failing(errors.New("boom")),
		matchAll(domain.Payload{"digest": "T"}),
	), unknown, zap.NewNop())

	target, err := c.Commit(context.Background(), "T", &route.Recorder{})
	if err != nil {
		t.Fatalf("probe errors must not fail the commit: %v", err)
	}
	if target.Category != category.Transaction {
		t.Fatalf("expected transaction route, got %+v", target)
	}
}

func TestCommit_EmptyInput(t *testing.T) {
	addr := &mockProber{}
	c := NewCommitter(bindings(addr, &mockProber{}, &mockProber{}), nil, zap.NewNop())
	var nav route.Recorder

	_, err := c.Commit(context.Background(), "   ", &nav)
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if addr.calls.Load() != 0 || nav.Count() != 0 {
		t.Fatal("empty commit must not probe or navigate")
	}
}

func TestCommit_NoUnknownResolverNavigatesMissing(t *testing.T) {
	c := NewCommitter(bindings(&mockProber{}, &mockProber{}, &mockProber{}), nil, zap.NewNop())
	var nav route.Recorder

	target, err := c.Commit(context.Background(), "zz", &nav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Path != "/error/missing/zz" {
		t.Errorf("unexpected path %q", target.Path)
	}
	if nav.Count() != 1 {
		t.Errorf("expected one navigation, got %d", nav.Count())
	}
}

func TestCommit_ProbesSeeTrimmedInput(t *testing.T) {
	addr := matchOnly("0xCAFE", domain.Payload{"id": "0xCAFE"})
	c := NewCommitter(bindings(addr, &mockProber{}, &mockProber{}), nil, zap.NewNop())

	target, err := c.Commit(context.Background(), "\t0xCAFE\n", &route.Recorder{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Kind != route.Matched {
		t.Fatalf("expected matched, got %q", target.Kind)
	}
}
