// Package backend opens the store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/okian/leaderboard/internal/adapters/repository"
	"github.com/okian/leaderboard/internal/adapters/repository/postgres"
	"github.com/okian/leaderboard/internal/adapters/repository/sqlite"
	"github.com/okian/leaderboard/internal/config"
)

// Open returns the store named by cfg.Store.
func Open(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return repository.NewMemoryStore(ctx), nil
	case config.StoreSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil
	case config.StorePostgres:
		s, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown store %q", config.ErrInvalidConfig, cfg.Store)
	}
}

// Durable reports whether the configured store outlives the process.
func Durable(cfg *config.Config) bool {
	return cfg.Store == config.StoreSQLite || cfg.Store == config.StorePostgres
}
