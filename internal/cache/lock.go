package cache

import (
	"context"
	"time"

	"StaffHub/storage/redis"
)

const lockPrefix = "lock"

// TryLock takes a Redis lock with SETNX. It reports false when another holder has it.
func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return redis.Client().SetNX(ctx, redis.Key(lockPrefix, key), 1, ttl).Result()
}

func Unlock(ctx context.Context, key string) error {
	return redis.Client().Del(ctx, redis.Key(lockPrefix, key)).Err()
}

// Locker exposes TryLock and Unlock as methods for callers that take an interface.
type Locker struct{}

func (Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return TryLock(ctx, key, ttl)
}

func (Locker) Unlock(ctx context.Context, key string) error {
	return Unlock(ctx, key)
}
