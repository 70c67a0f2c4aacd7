// Package bootstrap wires the process runtime shared by the commands.
package bootstrap

import (
	"context"
	"fmt"

	"posterr/internal/cache"
	"posterr/internal/config"
	"posterr/internal/database"
	"posterr/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedUsers bool
}

// InitRuntime connects to DB and Redis and optionally seeds the default users.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedUsers {
		if err := SeedUsers(ctx, db, cfg.SeedFixture); err != nil {
			return nil, nil, err
		}
	}

	return db, r, nil
}

// SeedUsers loads the fixture at path (embedded defaults when empty) and
// inserts it into an empty users table.
func SeedUsers(ctx context.Context, db *gorm.DB, path string) error {
	fixture, err := seed.LoadFixture(path)
	if err != nil {
		return fmt.Errorf("failed to load user fixture: %w", err)
	}
	if _, err := seed.Users(ctx, db, fixture); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	return nil
}
