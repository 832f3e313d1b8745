package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	ri "github.com/redis/go-redis/v9"

	"StaffHub/storage/redis"
)

// ttlJitterMax spreads expirations so entries written together do not expire together.
const ttlJitterMax = 5 * time.Second

// ProtectedCache stores JSON values under a key prefix behind RedisBreaker.
// When Redis is not initialized every read misses and every write is a no-op.
type ProtectedCache struct {
	breaker   *CircuitBreaker
	keyPrefix string
	ttl       time.Duration
}

func NewProtectedCache(keyPrefix string, ttl time.Duration) *ProtectedCache {
	return &ProtectedCache{
		breaker:   RedisBreaker,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (pc *ProtectedCache) Set(ctx context.Context, key string, value interface{}) error {
	if !redis.Ready() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	ttl := pc.ttl + time.Duration(rand.Int63n(int64(ttlJitterMax)))

	return pc.breaker.Call(func() error {
		return redis.Client().Set(ctx, redis.Key(pc.keyPrefix, key), data, ttl).Err()
	})
}

// Get unmarshals the cached value into dest and reports whether it was found.
func (pc *ProtectedCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !redis.Ready() {
		return false, nil
	}

	var data []byte
	err := pc.breaker.Call(func() error {
		b, err := redis.Client().Get(ctx, redis.Key(pc.keyPrefix, key)).Bytes()
		if errors.Is(err, ri.Nil) {
			return nil
		}
		data = b
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to get cache: %w", err)
	}
	if data == nil {
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (pc *ProtectedCache) Delete(ctx context.Context, key string) error {
	if !redis.Ready() {
		return nil
	}
	return pc.breaker.Call(func() error {
		return redis.Client().Del(ctx, redis.Key(pc.keyPrefix, key)).Err()
	})
}
