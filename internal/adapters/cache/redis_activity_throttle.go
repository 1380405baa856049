package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisActivityThrottle coalesces heartbeat writes so frequent pings from an
// active session hit Postgres at most once per window.
type RedisActivityThrottle struct {
	client *redis.Client
}

func NewRedisActivityThrottle(client *redis.Client) *RedisActivityThrottle {
	return &RedisActivityThrottle{client: client}
}

func (t *RedisActivityThrottle) ShouldPersist(ctx context.Context, sessionID uuid.UUID, window time.Duration) (bool, error) {
	if window <= 0 {
		return true, nil
	}
	key := "spotcast:session:activity:" + sessionID.String()
	return t.client.SetNX(ctx, key, 1, window).Result()
}
