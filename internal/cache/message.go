package cache

import (
	"context"
	"fmt"
	"time"

	"StaffHub/storage/redis"
)

const (
	messageProcessedPrefix = "msg:processed"
	processedTTL           = 72 * time.Hour
)

// MessageDeduper marks broker message ids so redelivered events are handled once.
type MessageDeduper struct{}

// TryMark atomically marks messageID as processing. False means it was seen before.
func (MessageDeduper) TryMark(ctx context.Context, messageID string) (bool, error) {
	ok, err := redis.Client().SetNX(ctx, redis.Key(messageProcessedPrefix, messageID), "processing", processedTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return ok, nil
}

// Unmark releases a mark after a failed attempt so a retry can process the message.
func (MessageDeduper) Unmark(ctx context.Context, messageID string) error {
	return redis.Client().Del(ctx, redis.Key(messageProcessedPrefix, messageID)).Err()
}

// MarkDone records the message as completed.
func (MessageDeduper) MarkDone(ctx context.Context, messageID string) error {
	return redis.Client().Set(ctx, redis.Key(messageProcessedPrefix, messageID), "completed", processedTTL).Err()
}
