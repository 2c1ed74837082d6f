package db

import (
	"fmt"

	"github.com/ikkim/bizreview-backend/config"
	"github.com/ikkim/bizreview-backend/internal/datastore"
	"github.com/ikkim/bizreview-backend/pkg/logger"
	"github.com/ikkim/bizreview-backend/pkg/redis"
)

// OpenStore builds the datastore selected by STORE_DRIVER.
func OpenStore(cfg *config.Config) (datastore.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		logger.Warn("Using in-memory store; data is lost on restart", nil)
		return datastore.NewMemoryStore(), nil

	case config.StorePostgres:
		gdb, err := Open(&cfg.Database)
		if err != nil {
			return nil, err
		}
		return datastore.NewGormStore(gdb), nil

	case config.StoreRedis:
		client, err := redis.Open(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return datastore.NewRedisStore(client, cfg.Redis.Prefix), nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
