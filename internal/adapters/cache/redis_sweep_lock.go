package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const sweepLockKey = "spotcast:sweep:lock"

// Release uses a compare-and-delete script so a slow sweeper cannot
// release a lock that has already expired and been re-acquired.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisSweepLock struct {
	client *redis.Client
}

func NewRedisSweepLock(client *redis.Client) *RedisSweepLock {
	return &RedisSweepLock{client: client}
}

func (l *RedisSweepLock) TryAcquire(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, sweepLockKey, holder, ttl).Result()
}

func (l *RedisSweepLock) Release(ctx context.Context, holder string) error {
	return releaseScript.Run(ctx, l.client, []string{sweepLockKey}, holder).Err()
}
