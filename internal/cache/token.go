package cache

import (
	"context"
	"errors"
	"strconv"

	ri "github.com/redis/go-redis/v9"

	"StaffHub/pkg/token"
	"StaffHub/storage/redis"
)

const tokenPrefix = "token"

func refreshKey(userID int64) string {
	return redis.Key(tokenPrefix, "refresh", strconv.FormatInt(userID, 10))
}

// RefreshTokenStore keeps the id of each user's current refresh token so older ones
// stop working once rotated.
type RefreshTokenStore struct{}

// Save records refreshID as the user's only valid refresh token.
func (RefreshTokenStore) Save(ctx context.Context, userID int64, refreshID string) error {
	return redis.Client().Set(ctx, refreshKey(userID), refreshID, token.RefreshTTL()).Err()
}

// Matches reports whether refreshID is the user's current refresh token.
func (RefreshTokenStore) Matches(ctx context.Context, userID int64, refreshID string) (bool, error) {
	stored, err := redis.Client().Get(ctx, refreshKey(userID)).Result()
	if errors.Is(err, ri.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == refreshID, nil
}

func (RefreshTokenStore) Delete(ctx context.Context, userID int64) error {
	return redis.Client().Del(ctx, refreshKey(userID)).Err()
}
