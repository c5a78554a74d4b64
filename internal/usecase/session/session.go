package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/preview"
	"github.com/kailas-cloud/omnisearch/internal/domain/route"
	"github.com/kailas-cloud/omnisearch/internal/metrics"
)

// Snapshot is a consistent copy of the observable session state.
type Snapshot struct {
	ID             string
	Network        string
	Input          string
	Preview        []preview.Item // nil when cleared
	Pending        bool
	LastNavigation *route.Target
	Revision       uint64
	UpdatedAt      time.Time
}

// Session owns the state behind one search box: the current input, the preview for it,
// and the pending flag between submit and settlement.
//
// Every input change bumps a revision. A preview batch publishes only if its revision is
// still current when it completes, so a slow batch for an old input never overwrites the
// preview of a newer one. In-flight probes are not cancelled; their results are dropped.
type Session struct {
	id        string
	network   string
	previewer PreviewResolver
	committer CommitResolver
	nav       route.Navigator
	onChange  func(Snapshot)
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	input     string
	items     []preview.Item
	pending   bool
	last      *route.Target
	revision  uint64
	updatedAt time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithNavigator forwards every navigation to nav in addition to recording it.
func WithNavigator(nav route.Navigator) Option {
	return func(s *Session) { s.nav = nav }
}

// WithOnChange registers a listener called after each state publication.
// It runs outside the session lock and must not block for long.
func WithOnChange(fn func(Snapshot)) Option {
	return func(s *Session) { s.onChange = fn }
}

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// New creates a session.
func New(id, network string, previewer PreviewResolver, committer CommitResolver, opts ...Option) *Session {
	s := &Session{
		id:        id,
		network:   network,
		previewer: previewer,
		committer: committer,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.updatedAt = s.now()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Network returns the network the session resolves against.
func (s *Session) Network() string { return s.network }

// Input returns the current input text.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Preview returns the preview for the current input, or nil when cleared.
func (s *Session) Preview() []preview.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items
}

// Pending reports whether a commit is in progress.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// LastNavigation returns the most recent navigation, if any.
func (s *Session) LastNavigation() (route.Target, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return route.Target{}, false
	}
	return *s.last, true
}

// Snapshot returns all observable state at once.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// TextChanged records a new input value and starts its preview batch.
// An empty value clears the preview immediately and fires no probes.
// The batch keeps running if ctx is cancelled; only its publication is conditional.
func (s *Session) TextChanged(ctx context.Context, value string) *Batch {
	s.mu.Lock()
	s.revision++
	rev := s.revision
	s.input = value
	s.updatedAt = s.now()

	if value == "" {
		s.items = nil
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		return finishedBatch(rev, value)
	}
	s.mu.Unlock()

	b := newBatch(rev, value)
	bctx := context.WithoutCancel(ctx)
	go func() {
		defer close(b.done)
		items := s.previewer.Preview(bctx, value)
		b.committed = s.publish(rev, items)
	}()
	return b
}

// publish commits items if rev is still the latest revision.
func (s *Session) publish(rev uint64, items []preview.Item) bool {
	s.mu.Lock()
	if rev != s.revision {
		s.mu.Unlock()
		metrics.PreviewBatchesTotal.WithLabelValues("stale").Inc()
		s.logger.Debug("Discarded stale preview batch",
			zap.String("session_id", s.id),
			zap.Uint64("revision", rev),
		)
		return false
	}
	s.items = items
	s.updatedAt = s.now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	metrics.PreviewBatchesTotal.WithLabelValues("committed").Inc()
	s.notify(snap)
	return true
}

// Submit commits the current input and blocks until the navigation settles.
// Cancelling ctx does not abort the commit.
// Blank input returns domain.ErrEmptyInput and a submit during a pending commit returns
// domain.ErrPending; neither changes state. Whatever the commit outcome, the input is
// cleared and pending mode ends.
func (s *Session) Submit(ctx context.Context) (target route.Target, err error) {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return route.Target{}, domain.ErrPending
	}
	query := strings.TrimSpace(s.input)
	if query == "" {
		s.mu.Unlock()
		return route.Target{}, domain.ErrEmptyInput
	}
	s.pending = true
	s.updatedAt = s.now()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	defer s.settle()

	// The caller going away must not turn in-flight probes into absences;
	// every probe is still bounded by its own timeout.
	return s.committer.Commit(context.WithoutCancel(ctx), query, route.NavigatorFunc(s.navigate))
}

func (s *Session) navigate(t route.Target) {
	s.mu.Lock()
	s.last = &t
	s.mu.Unlock()

	s.logger.Info("Navigate",
		zap.String("session_id", s.id),
		zap.String("path", t.Path),
		zap.String("kind", string(t.Kind)),
	)
	if s.nav != nil {
		s.nav.Navigate(t)
	}
}

// settle ends pending mode. The input is cleared, so the revision moves on and the
// preview for the submitted text is dropped along with any batch still in flight.
func (s *Session) settle() {
	s.mu.Lock()
	s.pending = false
	s.input = ""
	s.items = nil
	s.revision++
	s.updatedAt = s.now()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:        s.id,
		Network:   s.network,
		Input:     s.input,
		Preview:   s.items,
		Pending:   s.pending,
		Revision:  s.revision,
		UpdatedAt: s.updatedAt,
	}
	if s.last != nil {
		last := *s.last
		snap.LastNavigation = &last
	}
	return snap
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}
