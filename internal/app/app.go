// Package app wires probes, resolvers and services for every configured network.
package app

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/config"
	"github.com/kailas-cloud/omnisearch/internal/db"
	"github.com/kailas-cloud/omnisearch/internal/domain/category"
	"github.com/kailas-cloud/omnisearch/internal/domain/network"
	"github.com/kailas-cloud/omnisearch/internal/metrics"
	"github.com/kailas-cloud/omnisearch/internal/repository/ledger"
	"github.com/kailas-cloud/omnisearch/internal/repository/probecache"
	"github.com/kailas-cloud/omnisearch/internal/repository/sessionstore"
	"github.com/kailas-cloud/omnisearch/internal/transport/rpc"
	"github.com/kailas-cloud/omnisearch/internal/usecase/health"
	"github.com/kailas-cloud/omnisearch/internal/usecase/probe"
	"github.com/kailas-cloud/omnisearch/internal/usecase/resolve"
	"github.com/kailas-cloud/omnisearch/internal/usecase/search"
)

// NetworkOptions configures one ledger backend.
type NetworkOptions struct {
	RPCURL   string
	Timeout  time.Duration
	MaxTries uint
}

// Options holds everything Build needs.
type Options struct {
	Networks       map[string]NetworkOptions
	DefaultNetwork string
	Categories     []category.Category // nil means category.All()
	ProbeTimeout   time.Duration
	Store          db.Store // health checks, and the probe cache when CacheEnabled
	CacheEnabled   bool
	CacheTTL       time.Duration
	SessionTTL     time.Duration
	HTTPClient     *http.Client // optional, shared by every RPC client
	Logger         *zap.Logger
}

// OptionsFromConfig maps the service configuration onto Options.
func OptionsFromConfig(cfg *config.Config, store db.Store, logger *zap.Logger) Options {
	nets := make(map[string]NetworkOptions, len(cfg.Networks))
	for name, n := range cfg.Networks {
		nets[name] = NetworkOptions{
			RPCURL:   n.RPCURL,
			Timeout:  n.Timeout(),
			MaxTries: uint(n.MaxRetries) + 1,
		}
	}
	return Options{
		Networks:       nets,
		DefaultNetwork: cfg.DefaultNetwork,
		Categories:     cfg.Categories(),
		ProbeTimeout:   cfg.Search.ProbeTimeout(),
		Store:          store,
		CacheEnabled:   cfg.Cache.Enabled,
		CacheTTL:       cfg.Cache.TTL(),
		SessionTTL:     cfg.Search.SessionTTL(),
		Logger:         logger,
	}
}

// App is the wired service graph.
type App struct {
	Networks *network.Registry
	Search   *search.Service
	Health   *health.Service
	Sessions *sessionstore.Store
}

// Build creates an RPC client and a probe chain per network:
// ledger probe, then the optional cache, then timeout and metrics outermost.
func Build(opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	cats := opts.Categories
	if len(cats) == 0 {
		cats = category.All()
	}

	nets := make([]network.Network, 0, len(opts.Networks))
	for name, n := range opts.Networks {
		nets = append(nets, network.New(name, n.RPCURL))
	}
	registry, err := network.NewRegistry(opts.DefaultNetwork, nets...)
	if err != nil {
		return nil, fmt.Errorf("build network registry: %w", err)
	}

	engines := make(map[string]search.Engine, len(nets))
	nodes := make(map[string]health.NodePinger, len(nets))
	for _, name := range registry.Names() {
		n := opts.Networks[name]
		netLogger := logger.With(zap.String("network", name))
		client := rpc.NewClient(&rpc.Config{
			URL:        n.RPCURL,
			Timeout:    n.Timeout,
			MaxTries:   n.MaxTries,
			HTTPClient: opts.HTTPClient,
			Logger:     netLogger,
		})
		nodes[name] = client
		engines[name] = search.NewEngine(bindings(name, ledger.NewProbes(client), cats, &opts, netLogger), netLogger)
	}

	sessions := sessionstore.New(opts.SessionTTL)
	svc, err := search.New(engines, registry.Default(), sessions, logger)
	if err != nil {
		return nil, fmt.Errorf("build search service: %w", err)
	}

	return &App{
		Networks: registry,
		Search:   svc,
		Health:   health.New(opts.Store, nodes),
		Sessions: sessions,
	}, nil
}

// bindings decorates each category probe in declared order.
func bindings(
	networkName string, probes map[category.Category]resolve.Prober,
	cats []category.Category, opts *Options, logger *zap.Logger,
) []resolve.Binding {
	out := make([]resolve.Binding, 0, len(cats))
	for _, c := range cats {
		p := probes[c]
		if opts.CacheEnabled {
			p = probecache.New(p, opts.Store, networkName, c, opts.CacheTTL, metrics.ProbeCacheTotal, logger)
		}
		p = probe.NewInstrumentedProber(p, networkName, c, opts.ProbeTimeout, logger)
		out = append(out, resolve.Binding{Category: c, Prober: p})
	}
	return out
}
