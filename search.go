package omnisearch

import (
	"context"
	"fmt"
	"time"

	searchuc "github.com/kailas-cloud/omnisearch/internal/usecase/search"
	"github.com/kailas-cloud/omnisearch/internal/usecase/session"
)

// Searcher runs lookups against one network.
type Searcher struct {
	network string
	svc     *searchuc.Service
	obs     *observer
}

// Preview probes every category for query and returns one item per category in
// probe order. Empty query returns nil without probing.
func (s *Searcher) Preview(ctx context.Context, query string) (items []PreviewItem, err error) {
	start := time.Now()
	defer func() { s.obs.observe("preview", s.network, start, err) }()

	raw, err := s.svc.Preview(ctx, s.network, query)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	return previewFromDomain(raw), nil
}

// Resolve commits query: the first category in probe order that matches wins, then the
// normalized fallback, then the not-found route. Blank query returns ErrEmptyInput.
func (s *Searcher) Resolve(ctx context.Context, query string) (target Target, err error) {
	start := time.Now()
	defer func() { s.obs.observe("resolve", s.network, start, err) }()

	t, err := s.svc.Commit(ctx, s.network, query)
	if err != nil {
		return Target{}, fmt.Errorf("resolve: %w", err)
	}
	return targetFromDomain(t), nil
}

// NewSession starts an interactive session on this network.
func (s *Searcher) NewSession(ctx context.Context, opts ...SessionOption) (*Session, error) {
	var sessOpts []session.Option
	for _, o := range opts {
		o(&sessOpts)
	}
	sess, err := s.svc.CreateSession(ctx, s.network, sessOpts...)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	return &Session{s: sess, obs: s.obs}, nil
}
