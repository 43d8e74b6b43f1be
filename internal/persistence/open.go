package persistence

import (
	"context"
	"fmt"

	"github.com/angelmondragon/rocketshoes-cart/pkg/config"
	"github.com/angelmondragon/rocketshoes-cart/pkg/db"
	"github.com/angelmondragon/rocketshoes-cart/pkg/logger"
	"github.com/angelmondragon/rocketshoes-cart/pkg/migrate"
	"github.com/angelmondragon/rocketshoes-cart/pkg/redis"
)

// Backend is an opened blob store plus its lifecycle hooks. Pinger is nil
// for the in-memory store.
type Backend struct {
	Store  BlobStore
	Pinger Pinger
	close  func() error
}

func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects the blob store selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Backend, error) {
	if logg == nil {
		logg = logger.Nop()
	}
	ctx = logg.WithField(ctx, "storage_driver", cfg.Storage.Driver)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logg.Warn(ctx, "cart persisted in process memory only")
		return &Backend{Store: NewMemoryStore()}, nil

	case config.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		store, err := NewRedisStore(client)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &Backend{Store: store, Pinger: store, close: client.Close}, nil

	case config.StorageDriverPostgres, config.StorageDriverSQLite:
		client, err := db.New(ctx, cfg.Storage.Driver, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		if err := migrate.MaybeAutoRun(ctx, cfg, logg, client); err != nil {
			_ = client.Close()
			return nil, err
		}
		store, err := NewSQLStore(client)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &Backend{Store: store, Pinger: store, close: client.Close}, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
