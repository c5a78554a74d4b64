package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/category"
	"github.com/kailas-cloud/omnisearch/internal/repository/sessionstore"
	healthuc "github.com/kailas-cloud/omnisearch/internal/usecase/health"
	"github.com/kailas-cloud/omnisearch/internal/usecase/resolve"
	searchuc "github.com/kailas-cloud/omnisearch/internal/usecase/search"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func okPing(context.Context) error { return nil }

func failPing(context.Context) error { return errors.New("connection refused") }

type testEnv struct {
	handler http.Handler
	release chan struct{}
}

// newTestEnv serves mainnet where "0xa1" is an address, "0xb2" an object, and
// "Tx1" or "slow" a transaction. "slow" blocks until release is closed.
func newTestEnv(t *testing.T, db, node pingFunc) *testEnv {
	t.Helper()
	release := make(chan struct{})
	t.Cleanup(func() {
		select {
		case <-release:
		default:
			close(release)
		}
	})

	matchOn := func(want ...string) resolve.Prober {
		return resolve.ProberFunc(func(_ context.Context, input string) (domain.Payload, error) {
			for _, w := range want {
				if input == w {
					return domain.Payload{"id": input}, nil
				}
			}
			return nil, nil
		})
	}
	tx := resolve.ProberFunc(func(ctx context.Context, input string) (domain.Payload, error) {
		switch input {
		case "Tx1":
			return domain.Payload{"id": input, "checkpoint": "42"}, nil
		case "slow":
			select {
			case <-release:
				return domain.Payload{"id": input}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return nil, nil
	})

	probes := []resolve.Binding{
		{Category: category.Address, Prober: matchOn("0xa1")},
		{Category: category.Object, Prober: matchOn("0xb2")},
		{Category: category.Transaction, Prober: tx},
	}
	engines := map[string]searchuc.Engine{"mainnet": searchuc.NewEngine(probes, zap.NewNop())}

	search, err := searchuc.New(engines, "mainnet", sessionstore.New(time.Minute), zap.NewNop())
	if err != nil {
		t.Fatalf("search.New: %v", err)
	}
	health := healthuc.New(db, map[string]healthuc.NodePinger{"mainnet": node})

	srv := NewServer(search, health, zap.NewNop())
	return &testEnv{handler: HandlerWithRouter(srv, chi.NewRouter()), release: release}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code ErrorResponseCode) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rr.Code, rr.Body.String())
	}
	if got := decode[ErrorResponse](t, rr); got.Code != code {
		t.Errorf("expected code %s, got %s", code, got.Code)
	}
}

func TestPreview_ItemsInCategoryOrder(t *testing.T) {
	env := newTestEnv(t, okPing, okPing)

	rr := env.do(t, http.MethodGet, "/v1/search/preview?q=0xb2", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decode[PreviewResponse](t, rr)
	if resp.Network != "mainnet" {
		t.Errorf("expected default network, got %q", resp.Network)
	}
	want := []struct {
		category string
		matched  bool
	}{{"address", false}, {"object", true}, {"transaction", false}}
	if len(resp.Items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(resp.Items))
	}
	for i, w := range want {
		it := resp.Items[i]
		if it.Category != w.category || it.Matched != w.matched || it.Input != "0xb2" {
			t.Errorf("item %d: got %+v, want %s matched=%v", i, it, w.category, w.matched)
		}
	}
	if resp.Items[1].Result["id"] != "0xb2" {
		t.Errorf("expected object payload, got %v", resp.Items[1].Result)
	}
}

func TestPreview_EmptyQuery(t *testing.T) {
	env := newTestEnv(t, okPing, okPing)

	rr := env.do(t, http.MethodGet, "/v1/search/preview", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if resp := decode[PreviewResponse](t, rr); resp.Items != nil {
		t.Errorf("expected no items for empty query, got %+v", resp.Items)
	}
}

func TestPreview_UnknownNetwork(t *testing.T) {
	env := newTestEnv(t, okPing, okPing)

	rr := env.do(t, http.MethodGet, "/v1/search/preview?q=0xa1&network=devnet", "")
	expectError(t, rr, http.StatusBadRequest, ErrorResponseCodeUnknownNetwork)
}

func TestCommit(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantPath string
		wantKind string
	}{
		{"address wins", `{"query":"0xa1"}`, "/addresses/0xa1", "matched"},
		{"transaction", `{"query":"Tx1","network":"mainnet"}`, "/transactions/Tx1", "matched"},
		{"trimmed", `{"query":"  0xb2 "}`, "/objects/0xb2", "matched"},
		{"hex fallback", `{"query":"B2"}`, "/objects/0xb2", "fallback"},
		{"nothing matches", `{"query":"zzz"}`, "/error/missing/zzz", "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, okPing, okPing)

			rr := env.do(t, http.MethodPost, "/v1/search/commit", tt.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			got := decode[Target](t, rr)
			if got.Path != tt.wantPath || got.Kind != tt.wantKind {
				t.Errorf("got %s (%s), want %s (%s)", got.Path, got.Kind, tt.wantPath, tt.wantKind)
			}
		})
	}
}

func TestCommit_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   ErrorResponseCode
	}{
		{"blank query", `{"query":"   "}`, http.StatusBadRequest, ErrorResponseCodeEmptyInput},
		{"unknown network", `{"query":"0xa1","network":"devnet"}`, http.StatusBadRequest, ErrorResponseCodeUnknownNetwork},
		{"malformed body", `{"query":`, http.StatusBadRequest, ErrorResponseCodeBadRequest},
		{"unknown field", `{"q":"0xa1"}`, http.StatusBadRequest, ErrorResponseCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, okPing, okPing)
			expectError(t, env.do(t, http.MethodPost, "/v1/search/commit", tt.body), tt.status, tt.code)
		})
	}
}

func TestGo_Redirects(t *testing.T) {
	env := newTestEnv(t, okPing, okPing)

	rr := env.do(t, http.MethodGet, "/v1/search/go?q=Tx1", "")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/transactions/Tx1" {
		t.Errorf("unexpected Location %q", loc)
	}
}

func TestGo_EmptyQuery(t *testing.T) {
	env := newTestEnv(t, okPing, okPing)
	expectError(t, env.do(t, http.MethodGet, "/v1/search/go?q=", ""), http.StatusBadRequest, ErrorResponseCodeEmptyInput)
}

func TestSessionFlow(t *testing.T) {
	env := newTestEnv(t, okPing, okPing)

	rr := env.do(t, http.MethodPost, "/v1/sessions", `{"network":"mainnet"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	created := decode[Session](t, rr)
	if created.ID == "" || created.Network != "mainnet" || created.Preview != nil {
		t.Fatalf("unexpected new session %+v", created)
	}
	if loc := rr.Header().Get("Location"); loc != "/v1/sessions/"+created.ID {
		t.Errorf("unexpected Location %q", loc)
	}
	base := "/v1/sessions/" + created.ID

	rr = env.do(t, http.MethodPut, base+"/input?wait=true", `{"value":"0xa1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("input: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	typed := decode[Session](t, rr)
	if typed.Batch == nil || !typed.Batch.Settled || !typed.Batch.Committed {
		t.Fatalf("expected a settled, published batch, got %+v", typed.Batch)
	}
	if typed.Input != "0xa1" || len(typed.Preview) != 3 || !typed.Preview[0].Matched {
		t.Errorf("unexpected session after input %+v", typed)
	}

	rr = env.do(t, http.MethodPost, base+"/submit", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if target := decode[Target](t, rr); target.Path != "/addresses/0xa1" {
		t.Errorf("unexpected target %+v", target)
	}

	rr = env.do(t, http.MethodGet, base, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rr.Code)
	}
	settled := decode[Session](t, rr)
	if settled.Input != "" || settled.Pending || settled.Preview != nil {
		t.Errorf("expected cleared session after submit, got %+v", settled)
	}
	if settled.LastNavigation == nil || settled.LastNavigation.Path != "/addresses/0xa1" {
		t.Errorf("expected last navigation to be recorded, got %+v", settled.LastNavigation)
	}

	expectError(t, env.do(t, http.MethodPost, base+"/submit", ""), http.StatusBadRequest, ErrorResponseCodeEmptyInput)

	if rr = env.do(t, http.MethodDelete, base, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	expectError(t, env.do(t, http.MethodGet, base, ""), http.StatusNotFound, ErrorResponseCodeSessionNotFound)
	expectError(t, env.do(t, http.MethodDelete, base, ""), http.StatusNotFound, ErrorResponseCodeSessionNotFound)
}

func TestSession_CreateWithoutBody(t *testing.T) {
	env := newTestEnv(t, okPing, okPing)

	rr := env.do(t, http.MethodPost, "/v1/sessions", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if s := decode[Session](t, rr); s.Network != "mainnet" {
		t.Errorf("expected default network, got %q", s.Network)
	}
}

func TestSession_CreateUnknownNetwork(t *testing.T) {
	env := newTestEnv(t, okPing, okPing)
	expectError(t, env.do(t, http.MethodPost, "/v1/sessions", `{"network":"devnet"}`),
		http.StatusBadRequest, ErrorResponseCodeUnknownNetwork)
}

func TestSession_InputValidation(t *testing.T) {
	env := newTestEnv(t, okPing, okPing)
	created := decode[Session](t, env.do(t, http.MethodPost, "/v1/sessions", ""))
	base := "/v1/sessions/" + created.ID

	expectError(t, env.do(t, http.MethodPut, base+"/input", `{}`), http.StatusBadRequest, ErrorResponseCodeBadRequest)
	expectError(t, env.do(t, http.MethodPut, base+"/input?wait=maybe", `{"value":"x"}`),
		http.StatusBadRequest, ErrorResponseCodeBadRequest)
	expectError(t, env.do(t, http.MethodPut, "/v1/sessions/missing/input", `{"value":"x"}`),
		http.StatusNotFound, ErrorResponseCodeSessionNotFound)
}

func TestSession_EmptyInputSettlesImmediately(t *testing.T) {
	env := newTestEnv(t, okPing, okPing)
	created := decode[Session](t, env.do(t, http.MethodPost, "/v1/sessions", ""))

	rr := env.do(t, http.MethodPut, "/v1/sessions/"+created.ID+"/input", `{"value":""}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	s := decode[Session](t, rr)
	if s.Batch == nil || !s.Batch.Settled || s.Preview != nil {
		t.Errorf("expected cleared preview and a settled batch, got %+v", s)
	}
}

func TestSession_SubmitWhilePending(t *testing.T) {
	env := newTestEnv(t, okPing, okPing)
	created := decode[Session](t, env.do(t, http.MethodPost, "/v1/sessions", ""))
	base := "/v1/sessions/" + created.ID

	if rr := env.do(t, http.MethodPut, base+"/input", `{"value":"slow"}`); rr.Code != http.StatusOK {
		t.Fatalf("input: expected 200, got %d", rr.Code)
	}

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, base+"/submit", http.NoBody)
		rr := httptest.NewRecorder()
		env.handler.ServeHTTP(rr, req)
		first <- rr
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if decode[Session](t, env.do(t, http.MethodGet, base, "")).Pending {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("session never entered pending mode")
		}
		time.Sleep(5 * time.Millisecond)
	}

	expectError(t, env.do(t, http.MethodPost, base+"/submit", ""), http.StatusConflict, ErrorResponseCodePending)

	close(env.release)
	select {
	case rr := <-first:
		if rr.Code != http.StatusOK {
			t.Fatalf("first submit: expected 200, got %d", rr.Code)
		}
		if target := decode[Target](t, rr); target.Path != "/transactions/slow" {
			t.Errorf("unexpected target %+v", target)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first submit did not complete")
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		db, node   pingFunc
		wantStatus int
		wantBody   string
	}{
		{"healthy", okPing, okPing, http.StatusOK, "ok"},
		{"degraded", okPing, failPing, http.StatusOK, "degraded"},
		{"unhealthy", failPing, failPing, http.StatusServiceUnavailable, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.db, tt.node)

			rr := env.do(t, http.MethodGet, "/health", "")
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			resp := decode[HealthResponse](t, rr)
			if resp.Status != tt.wantBody {
				t.Errorf("expected status %q, got %q", tt.wantBody, resp.Status)
			}
			if _, ok := resp.Checks["network:mainnet"]; !ok {
				t.Errorf("expected a mainnet check, got %v", resp.Checks)
			}
		})
	}
}

func TestRouting_JSONErrors(t *testing.T) {
	env := newTestEnv(t, okPing, okPing)

	expectError(t, env.do(t, http.MethodGet, "/v1/unknown", ""), http.StatusNotFound, ErrorResponseCodeNotFound)
	expectError(t, env.do(t, http.MethodDelete, "/v1/search/preview", ""),
		http.StatusMethodNotAllowed, ErrorResponseCodeMethodNotAllowed)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, okPing, okPing)

	rr := env.do(t, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestSafeDomainMessage_HidesInternals(t *testing.T) {
	if got := safeDomainMessage(errors.New("dial tcp 10.0.0.1:443: refused")); got != "internal error" {
		t.Errorf("expected generic message, got %q", got)
	}
	wrapped := errors.Join(domain.ErrBackendUnavailable, errors.New("secret upstream detail"))
	if got := safeDomainMessage(wrapped); got != domain.ErrBackendUnavailable.Error() {
		t.Errorf("expected sentinel message, got %q", got)
	}
}
