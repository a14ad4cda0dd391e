package config

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client
var Ctx = context.Background()

// ConnectRedis initializes the cache client. Redis is optional: when the
// address is empty or the server is unreachable, RDB stays nil and callers
// skip caching.
func ConnectRedis(addr string) {
	if addr == "" {
		slog.Warn("REDIS_ADDR is not set, caching is disabled")
		return
	}

	RDB = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		slog.Error("Failed to connect to Redis, caching is disabled", "error", err)
		RDB = nil
		return
	}

	slog.Info("Connected to Redis")
}
