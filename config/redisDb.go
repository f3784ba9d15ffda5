package config

import (
	"context"
	"log"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ConnectRedisWithRetry returns the Redis client and a lock client built on it.
// An empty REDIS_ADDRESS disables Redis: both return values are nil and callers
// fall back to in-process locking and uncached reads.
func ConnectRedisWithRetry(ctx context.Context, cfg *Config) (*redis.Client, *redislock.Client, error) {
	if cfg.Redis.Address == "" {
		log.Printf("REDIS_ADDRESS not set; redis disabled")
		return nil, nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	var attempt int
	for {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			log.Printf("connected to redis (attempt=%d)", attempt)
			return rdb, redislock.New(rdb), nil
		}

		sleep := backoff(attempt)
		log.Printf("failed to connect redis (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
}
