package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// NodePinger checks a ledger node's availability.
type NodePinger interface {
	Ping(ctx context.Context) error
}
