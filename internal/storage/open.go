package storage

import (
	"context"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/config"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Open builds the device store selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case DriverSQLite, "":
		return NewSQLiteStore(cfg.StoragePath)
	case DriverRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
