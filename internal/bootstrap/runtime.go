// Package bootstrap wires the store and cache shared by the server and the
// operator CLI.
package bootstrap

import (
	"context"
	"fmt"

	"pulse/internal/cache"
	"pulse/internal/config"
	"pulse/internal/database"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	ApplySchema bool
	// SkipCache leaves the feed cache disabled even when REDIS_URL is set.
	SkipCache bool
}

// InitRuntime connects to the DB and Redis and optionally brings the schema
// up to date. The returned client is nil when the cache is disabled or
// unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	if opts.SkipCache {
		return db, nil, nil
	}
	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}
