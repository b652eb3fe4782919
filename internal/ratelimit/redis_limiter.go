package ratelimit

import (
	"context"
	"fmt"
	"time"

	"eden_passes_backend/pkg/utils"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "edenpasses:ratelimit:"

// RedisLimiter shares windows between instances through Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	period time.Duration
}

// NewRedisLimiter connects to the Redis instance at url.
func NewRedisLimiter(url string, limit int, period time.Duration) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	utils.LogInfo("Connected to Redis for rate limiting", map[string]interface{}{"addr": opts.Addr})
	return &RedisLimiter{client: client, limit: limit, period: period}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	redisKey := keyPrefix + key

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("rate limit counter for %s: %w", key, err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		// New window: the key has no expiry yet.
		if err := l.client.PExpire(ctx, redisKey, l.period).Err(); err != nil {
			return Result{}, fmt.Errorf("rate limit expiry for %s: %w", key, err)
		}
		remaining = l.period
	}
	return newResult(int(incr.Val()), l.limit, time.Now().Add(remaining)), nil
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
