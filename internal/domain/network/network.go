package network

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/omnisearch/internal/domain"
)

// Network is a named ledger backend.
type Network struct {
	name   string
	rpcURL string
}

// New creates a network.
func New(name, rpcURL string) Network {
	return Network{name: name, rpcURL: rpcURL}
}

// Name returns the network name.
func (n Network) Name() string { return n.name }

// RPCURL returns the JSON-RPC endpoint.
func (n Network) RPCURL() string { return n.rpcURL }

// Registry selects a backend by network name.
type Registry struct {
	networks map[string]Network
	def      string
}

// NewRegistry builds a registry. def must name one of networks.
func NewRegistry(def string, networks ...Network) (*Registry, error) {
	m := make(map[string]Network, len(networks))
	for _, n := range networks {
		m[n.name] = n
	}
	if _, ok := m[def]; !ok {
		return nil, fmt.Errorf("%w: default %q", domain.ErrUnknownNetwork, def)
	}
	return &Registry{networks: m, def: def}, nil
}

// Resolve returns the named network, or the default when name is empty.
func (r *Registry) Resolve(name string) (Network, error) {
	if name == "" {
		name = r.def
	}
	n, ok := r.networks[name]
	if !ok {
		return Network{}, fmt.Errorf("%w: %q", domain.ErrUnknownNetwork, name)
	}
	return n, nil
}

// Default returns the default network name.
func (r *Registry) Default() string { return r.def }

// Names returns all network names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.networks))
	for name := range r.networks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
