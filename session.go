package omnisearch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/omnisearch/internal/domain/route"
	"github.com/kailas-cloud/omnisearch/internal/usecase/session"
)

// SessionState is a consistent copy of a session's observable state.
type SessionState struct {
	Input          string
	Preview        []PreviewItem // nil when cleared
	Pending        bool
	LastNavigation *Target
}

// SessionOption configures a session created by NewSession.
type SessionOption func(*[]session.Option)

// OnNavigate calls fn with every route the session navigates to.
func OnNavigate(fn func(Target)) SessionOption {
	return func(opts *[]session.Option) {
		*opts = append(*opts, session.WithNavigator(route.NavigatorFunc(func(t route.Target) {
			fn(targetFromDomain(t))
		})))
	}
}

// OnChange calls fn after every state change: preview published, submit started,
// submit settled. fn runs on the goroutine that made the change and must not block.
func OnChange(fn func(SessionState)) SessionOption {
	return func(opts *[]session.Option) {
		*opts = append(*opts, session.WithOnChange(func(snap session.Snapshot) {
			fn(stateFromSnapshot(snap))
		}))
	}
}

func stateFromSnapshot(snap session.Snapshot) SessionState {
	st := SessionState{
		Input:   snap.Input,
		Preview: previewFromDomain(snap.Preview),
		Pending: snap.Pending,
	}
	if snap.LastNavigation != nil {
		t := targetFromDomain(*snap.LastNavigation)
		st.LastNavigation = &t
	}
	return st
}

// Session is the state behind one search box. Safe for concurrent use.
type Session struct {
	s   *session.Session
	obs *observer
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.s.ID() }

// Network returns the network the session resolves against.
func (s *Session) Network() string { return s.s.Network() }

// TextChanged records a new input and starts its preview. The returned channel closes
// once the preview settles; it is published only if no newer input arrived meanwhile.
func (s *Session) TextChanged(ctx context.Context, value string) <-chan struct{} {
	return s.s.TextChanged(ctx, value).Done()
}

// Input returns the current input.
func (s *Session) Input() string { return s.s.Input() }

// Preview returns the preview for the current input, or nil when cleared.
func (s *Session) Preview() []PreviewItem { return previewFromDomain(s.s.Preview()) }

// Pending reports whether a submit is still settling.
func (s *Session) Pending() bool { return s.s.Pending() }

// LastNavigation returns the most recent route the session navigated to.
func (s *Session) LastNavigation() (Target, bool) {
	t, ok := s.s.LastNavigation()
	if !ok {
		return Target{}, false
	}
	return targetFromDomain(t), true
}

// Submit resolves the current input and blocks until it settles. The input is cleared
// whatever the outcome. Returns ErrEmptyInput or ErrPending without changing state.
func (s *Session) Submit(ctx context.Context) (target Target, err error) {
	start := time.Now()
	defer func() { s.obs.observe("submit", s.s.Network(), start, err) }()

	t, err := s.s.Submit(ctx)
	if err != nil {
		return Target{}, fmt.Errorf("submit: %w", err)
	}
	return targetFromDomain(t), nil
}
