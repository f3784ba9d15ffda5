package store

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health pings the database and, when configured, redis.
func Health(ctx context.Context, db *gorm.DB, rdb *redis.Client) error {
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	if err := config.PingDatabase(ctx, db); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}
