package omnisearch

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type networkConfig struct {
	name   string
	rpcURL string
}

type clientConfig struct {
	networks       []networkConfig
	defaultNetwork string

	driver   string // "memory" (default), "redis" or "valkey"
	addrs    []string
	password string

	cacheTTL     time.Duration // zero disables the probe cache
	categories   []Category
	probeTimeout time.Duration
	rpcTimeout   time.Duration
	retries      uint
	sessionTTL   time.Duration
	httpClient   *http.Client

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithNetwork adds a ledger backend. The first network added is the default
// unless WithDefaultNetwork says otherwise.
func WithNetwork(name, rpcURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.networks = append(c.networks, networkConfig{name: name, rpcURL: rpcURL})
	})
}

// WithDefaultNetwork selects the network used when a call names none.
func WithDefaultNetwork(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultNetwork = name
	})
}

// WithValkey keeps the probe cache in a Valkey instance instead of process memory.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis keeps the probe cache in a Redis instance instead of process memory.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithCache caches positive probe results for ttl. Absences are never cached.
func WithCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithCategories restricts and orders the probed categories.
// Order is the commit priority. Default: address, object, transaction.
func WithCategories(cats ...Category) Option {
	return optionFunc(func(c *clientConfig) {
		c.categories = cats
	})
}

// WithProbeTimeout bounds every category probe. Default: 3s.
func WithProbeTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.probeTimeout = d
	})
}

// WithRPCTimeout bounds a single JSON-RPC attempt. Default: 5s.
func WithRPCTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.rpcTimeout = d
	})
}

// WithRetries sets how many times a failed RPC attempt is retried. Default: 1.
func WithRetries(n uint) Option {
	return optionFunc(func(c *clientConfig) {
		c.retries = n
	})
}

// WithSessionTTL sets how long an idle session is kept. Default: 15m.
func WithSessionTTL(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.sessionTTL = d
	})
}

// WithHTTPClient shares one HTTP client between every RPC backend.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithLogger enables structured logging for the engine and SDK operations.
// Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
