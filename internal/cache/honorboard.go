package cache

import (
	"context"
	"time"

	"StaffHub/config"
	"StaffHub/internal/model/dto"
)

const honorBoardKey = "current"

// HonorBoardCache caches the computed honor board payload in Redis.
type HonorBoardCache struct {
	pc *ProtectedCache
}

func NewHonorBoardCache() *HonorBoardCache {
	ttl := time.Duration(config.Cfg.HonorBoardCacheTTL) * time.Second
	return &HonorBoardCache{pc: NewProtectedCache("honorboard", ttl)}
}

func (c *HonorBoardCache) Get(ctx context.Context) (*dto.HonorBoardData, bool, error) {
	var data dto.HonorBoardData
	found, err := c.pc.Get(ctx, honorBoardKey, &data)
	if err != nil || !found {
		return nil, false, err
	}
	return &data, true, nil
}

func (c *HonorBoardCache) Set(ctx context.Context, data *dto.HonorBoardData) error {
	return c.pc.Set(ctx, honorBoardKey, data)
}

func (c *HonorBoardCache) Invalidate(ctx context.Context) error {
	return c.pc.Delete(ctx, honorBoardKey)
}
