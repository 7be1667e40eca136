// Package app wires configuration, infrastructure and the storefront packages into runnable processes.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/storage"
	"github.com/abgdnv/storefront/pkg/bootstrap"
)

// NewDurable opens the durable storage tier selected by cfg.Driver. The returned
// close function releases the underlying connection and is never nil.
func NewDurable(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.Storage, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		logger.Warn("Durable storage is in-memory; preferences and cart are lost on restart")
		return storage.NewMemory(0), func() {}, nil

	case config.DriverRedis:
		rdb, err := bootstrap.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to redis durable storage", "addr", cfg.Redis.Addr)
		return storage.NewRedis(rdb, cfg.Redis.KeyPrefix), func() { _ = rdb.Close() }, nil

	case config.DriverPostgres:
		if err := storage.Migrate(cfg.Database.URL); err != nil {
			return nil, nil, err
		}
		pool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to postgres durable storage")
		return storage.NewPostgres(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}
