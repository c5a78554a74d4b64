package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/omnisearch/internal/config"
	"github.com/kailas-cloud/omnisearch/internal/db"
	"github.com/kailas-cloud/omnisearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/omnisearch/internal/db/redis"
)

const memoryCleanupInterval = time.Minute

// openStore creates the configured store and waits until it answers pings.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (db.Store, error) {
	var store db.Store
	switch cfg.Driver {
	case db.DriverMemory:
		store = memory.NewStore(memoryCleanupInterval)
	case db.DriverRedis, db.DriverValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}
