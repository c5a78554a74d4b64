package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/preview"
	"github.com/kailas-cloud/omnisearch/internal/domain/route"
	"github.com/kailas-cloud/omnisearch/internal/usecase/session"
)

// Service resolves search input against the engine of the requested network
// and manages interactive resolution sessions.
type Service struct {
	engines        map[string]Engine
	defaultNetwork string
	sessions       SessionStore
	newID          func() string
	logger         *zap.Logger
}

// New creates a search service. defaultNetwork must be a key of engines.
func New(engines map[string]Engine, defaultNetwork string, sessions SessionStore, logger *zap.Logger) (*Service, error) {
	if _, ok := engines[defaultNetwork]; !ok {
		return nil, fmt.Errorf("%w: default %q", domain.ErrUnknownNetwork, defaultNetwork)
	}
	return &Service{
		engines:        engines,
		defaultNetwork: defaultNetwork,
		sessions:       sessions,
		newID:          uuid.NewString,
		logger:         logger,
	}, nil
}

// DefaultNetwork returns the network used when a request names none.
func (s *Service) DefaultNetwork() string { return s.defaultNetwork }

func (s *Service) engine(network string) (string, Engine, error) {
	if network == "" {
		network = s.defaultNetwork
	}
	e, ok := s.engines[network]
	if !ok {
		return "", Engine{}, fmt.Errorf("%w: %q", domain.ErrUnknownNetwork, network)
	}
	return network, e, nil
}

// Preview returns one item per category for input on network.
func (s *Service) Preview(ctx context.Context, network, input string) ([]preview.Item, error) {
	name, e, err := s.engine(network)
	if err != nil {
		return nil, err
	}
	items := e.Previewer.Preview(ctx, input)
	s.logger.Debug("Search previewed",
		zap.String("network", name),
		zap.Int("matched", len(preview.Matches(items))),
	)
	return items, nil
}

// Commit resolves input to a single navigation target on network.
func (s *Service) Commit(ctx context.Context, network, input string) (route.Target, error) {
	name, e, err := s.engine(network)
	if err != nil {
		return route.Target{}, err
	}
	if strings.TrimSpace(input) == "" {
		return route.Target{}, domain.ErrEmptyInput
	}

	rec := &route.Recorder{}
	target, err := e.Committer.Commit(ctx, input, rec)
	if err != nil {
		return route.Target{}, fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("Search committed",
		zap.String("network", name),
		zap.String("kind", string(target.Kind)),
		zap.String("path", target.Path),
		zap.Int("navigations", rec.Count()),
	)
	return target, nil
}

// CreateSession starts a resolution session on network. opts are applied after the
// service defaults.
func (s *Service) CreateSession(_ context.Context, network string, opts ...session.Option) (*session.Session, error) {
	name, e, err := s.engine(network)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	opts = append([]session.Option{
		session.WithLogger(s.logger.With(zap.String("session_id", id))),
	}, opts...)
	sess := session.New(id, name, e.Previewer, e.Committer, opts...)
	s.sessions.Save(sess)
	return sess, nil
}

// Session returns a live session by id.
func (s *Service) Session(_ context.Context, id string) (*session.Session, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// DeleteSession drops a session. In-flight batches finish but are never observed.
func (s *Service) DeleteSession(_ context.Context, id string) error {
	if err := s.sessions.Delete(id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
