package storage

import (
	"context"
	"fmt"

	"github.com/nikbrunner/sbm/internal/config"
	"github.com/nikbrunner/sbm/internal/logger"
	"github.com/nikbrunner/sbm/internal/model"
	rediscon "github.com/nikbrunner/sbm/internal/redis"
)

// Open returns the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (Storage, error) {
	return OpenBackend(ctx, cfg.Storage.Backend, cfg, log)
}

// OpenBackend opens a specific backend using the paths and connection
// settings in cfg. It lets callers copy between backends.
func OpenBackend(ctx context.Context, backend string, cfg *config.Config, log logger.Logger) (Storage, error) {
	switch backend {
	case config.BackendJSON:
		return NewJSONStorage(cfg.Storage.JSONPath), nil
	case config.BackendSQLite:
		return NewSQLiteStorage(cfg.Storage.SQLitePath)
	case config.BackendRedis:
		client, err := rediscon.New(ctx, rediscon.OptionsFromConfig(cfg.Redis), log)
		if err != nil {
			return nil, err
		}
		return NewRedisStorage(client, cfg.Redis.KeyPrefix), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}

// Copy loads everything from src and saves it to dst.
func Copy(ctx context.Context, dst, src Storage) (*model.Store, error) {
	store, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load source: %w", err)
	}
	if err := dst.Save(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to save destination: %w", err)
	}
	return store, nil
}
