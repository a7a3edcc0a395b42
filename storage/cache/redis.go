// Package cache wraps the redis client used for login throttling.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps a redis client with short timeouts.
type Redis struct {
	Client *redis.Client
}

func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Allow applies a fixed-window counter on key: at most limit hits per window.
// Redis being unreachable fails open so logins are never blocked by a cache
// outage.
func (r *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if r == nil || r.Client == nil {
		return true
	}
	n, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if n == 1 {
		r.Client.Expire(ctx, key, window)
	}
	return n <= int64(limit)
}

func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
