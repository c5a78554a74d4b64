package omnisearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/app"
	"github.com/kailas-cloud/omnisearch/internal/db"
	"github.com/kailas-cloud/omnisearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/omnisearch/internal/db/redis"
	"github.com/kailas-cloud/omnisearch/internal/domain/category"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultProbeTimeout     = 3 * time.Second
	defaultRPCTimeout       = 5 * time.Second
	defaultRetries          = 1
	defaultSessionTTL       = 15 * time.Minute
	memoryCleanupInterval   = time.Minute
)

// Client is the omnisearch SDK entry point.
type Client struct {
	store db.Store
	app   *app.App
	obs   *observer
}

// New creates a Client, connects the cache store and wires one engine per network.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:       db.DriverMemory,
		probeTimeout: defaultProbeTimeout,
		rpcTimeout:   defaultRPCTimeout,
		retries:      defaultRetries,
		sessionTTL:   defaultSessionTTL,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.networks) == 0 {
		return nil, errors.New("omnisearch: at least one network required (use WithNetwork)")
	}
	cats, err := categoriesToDomain(cfg.categories)
	if err != nil {
		return nil, fmt.Errorf("omnisearch: %w", err)
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("omnisearch: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	a, err := app.Build(buildOptions(cfg, cats, store))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("omnisearch: %w", err)
	}
	return &Client{store: store, app: a, obs: obs}, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case db.DriverMemory:
		return memory.NewStore(memoryCleanupInterval), nil
	case db.DriverValkey, db.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("omnisearch: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("omnisearch: unknown driver %q", cfg.driver)
	}
}

func buildOptions(cfg *clientConfig, cats []category.Category, store db.Store) app.Options {
	nets := make(map[string]app.NetworkOptions, len(cfg.networks))
	for _, n := range cfg.networks {
		nets[n.name] = app.NetworkOptions{
			RPCURL:   n.rpcURL,
			Timeout:  cfg.rpcTimeout,
			MaxTries: cfg.retries + 1,
		}
	}
	def := cfg.defaultNetwork
	if def == "" {
		def = cfg.networks[0].name
	}
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return app.Options{
		Networks:       nets,
		DefaultNetwork: def,
		Categories:     cats,
		ProbeTimeout:   cfg.probeTimeout,
		Store:          store,
		CacheEnabled:   cfg.cacheTTL > 0,
		CacheTTL:       cfg.cacheTTL,
		SessionTTL:     cfg.sessionTTL,
		HTTPClient:     cfg.httpClient,
		Logger:         logger,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Networks returns the configured network names, sorted.
func (c *Client) Networks() []string { return c.app.Networks.Names() }

// DefaultNetwork returns the network used when a call names none.
func (c *Client) DefaultNetwork() string { return c.app.Networks.Default() }

// Network returns a searcher bound to the named network. An empty name means the default.
func (c *Client) Network(name string) *Searcher {
	if name == "" {
		name = c.DefaultNetwork()
	}
	return &Searcher{network: name, svc: c.app.Search, obs: c.obs}
}

// Preview probes every category for query on the default network.
func (c *Client) Preview(ctx context.Context, query string) ([]PreviewItem, error) {
	return c.Network("").Preview(ctx, query)
}

// Resolve commits query on the default network and returns the chosen route.
func (c *Client) Resolve(ctx context.Context, query string) (Target, error) {
	return c.Network("").Resolve(ctx, query)
}

// NewSession starts an interactive session on the default network.
func (c *Client) NewSession(ctx context.Context, opts ...SessionOption) (*Session, error) {
	return c.Network("").NewSession(ctx, opts...)
}

// Session returns a live session by id.
func (c *Client) Session(ctx context.Context, id string) (*Session, error) {
	s, err := c.app.Search.Session(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("omnisearch: %w", err)
	}
	return &Session{s: s, obs: c.obs}, nil
}

// DeleteSession drops a session.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	if err := c.app.Search.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("omnisearch: %w", err)
	}
	return nil
}
