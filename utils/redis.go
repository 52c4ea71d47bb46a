package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kiran0823/tour-booking-backend/config"
)

var redisClient *redis.Client

// InitRedis connects the shared Redis client used for caching and the
// sweep leader lease.
func InitRedis(cfg *config.Config) error {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func Redis() *redis.Client {
	return redisClient
}

const sweepLeaseKey = "activity:sweep:lease"

// AcquireSweepLease grabs a short-lived lease so only one instance runs a
// given sweep tick. Sweeps are idempotent, so a lost lease costs nothing
// beyond redundant reads.
func AcquireSweepLease(ctx context.Context, ttl time.Duration) bool {
	if redisClient == nil {
		return true
	}
	ok, err := redisClient.SetNX(ctx, sweepLeaseKey, time.Now().UnixNano(), ttl).Result()
	if err != nil {
		// Redis being down must not stop the sweep.
		return true
	}
	return ok
}

// CacheDelete invalidates cached keys, best-effort.
func CacheDelete(ctx context.Context, keys ...string) {
	if redisClient == nil || len(keys) == 0 {
		return
	}
	_ = redisClient.Del(ctx, keys...).Err()
}

// CacheSet stores a value with TTL, best-effort.
func CacheSet(ctx context.Context, key string, value string, ttl time.Duration) {
	if redisClient == nil {
		return
	}
	_ = redisClient.Set(ctx, key, value, ttl).Err()
}

// CacheGet returns the cached string and whether it was present.
func CacheGet(ctx context.Context, key string) (string, bool) {
	if redisClient == nil {
		return "", false
	}
	val, err := redisClient.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}
