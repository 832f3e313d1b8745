package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"StaffHub/config"
	"StaffHub/pkg/errors"
	"StaffHub/pkg/logger"
	"StaffHub/pkg/response"
	"StaffHub/storage/redis"
)

// RateLimitConfig describes one sliding-window limit.
type RateLimitConfig struct {
	KeyPrefix     string
	Window        time.Duration
	BlockDuration time.Duration // zero disables blocking after the limit is hit
	MaxRequests   int
	ByUserID      bool // falls back to the client IP for anonymous requests
}

var (
	// LoginRateLimitConfig guards credential checks per client IP.
	LoginRateLimitConfig = RateLimitConfig{
		KeyPrefix:     "rate:login",
		Window:        time.Minute,
		MaxRequests:   10,
		BlockDuration: 15 * time.Minute,
	}

	ComplaintRateLimitConfig = RateLimitConfig{
		KeyPrefix:   "rate:complaint",
		Window:      10 * time.Minute,
		MaxRequests: 5,
		ByUserID:    true,
	}

	DefaultRateLimitConfig = RateLimitConfig{
		KeyPrefix:   "rate:api",
		Window:      time.Minute,
		MaxRequests: 300,
		ByUserID:    true,
	}
)

type RateLimiter struct {
	now    func() time.Time
	config RateLimitConfig
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{config: cfg, now: time.Now}
}

func (rl *RateLimiter) identifier(c *app.RequestContext) string {
	if rl.config.ByUserID {
		if u, ok := CurrentUser(c); ok {
			return "user:" + strconv.FormatInt(u.ID, 10)
		}
	}
	return "ip:" + c.ClientIP()
}

// Allow records the request in a Redis zset and reports whether the window still has
// room, along with the number of requests counted.
func (rl *RateLimiter) Allow(ctx context.Context, id string) (bool, int, error) {
	key := redis.Key(rl.config.KeyPrefix, id)
	now := rl.now()
	windowStart := now.Add(-rl.config.Window)

	pipe := redis.Client().Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window+10*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute rate limit pipeline: %w", err)
	}

	count := int(card.Val())
	return count <= rl.config.MaxRequests, count, nil
}

func (rl *RateLimiter) blockKey(id string) string {
	return redis.Key(rl.config.KeyPrefix, "block", id)
}

func (rl *RateLimiter) Block(ctx context.Context, id string) error {
	return redis.Client().Set(ctx, rl.blockKey(id), "1", rl.config.BlockDuration).Err()
}

func (rl *RateLimiter) IsBlocked(ctx context.Context, id string) (bool, error) {
	n, err := redis.Client().Exists(ctx, rl.blockKey(id)).Result()
	return n > 0, err
}

// RateLimitMiddleware enforces cfg. When Redis is unavailable requests pass through.
func RateLimitMiddleware(cfg RateLimitConfig) app.HandlerFunc {
	limiter := NewRateLimiter(cfg)

	return func(ctx context.Context, c *app.RequestContext) {
		if !config.Cfg.RateLimitEnabled || !redis.Ready() {
			c.Next(ctx)
			return
		}

		id := limiter.identifier(c)

		if cfg.BlockDuration > 0 {
			blocked, err := limiter.IsBlocked(ctx, id)
			if err != nil {
				logger.Logger.Warn("Failed to check block status", zap.Error(err))
			} else if blocked {
				response.Error(ctx, c, errors.TooManyRequests)
				c.Abort()
				return
			}
		}

		allowed, count, err := limiter.Allow(ctx, id)
		if err != nil {
			logger.Logger.Warn("Failed to check rate limit", zap.Error(err))
			c.Next(ctx)
			return
		}

		remaining := cfg.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			if cfg.BlockDuration > 0 {
				if err := limiter.Block(ctx, id); err != nil {
					logger.Logger.Warn("Failed to block client", zap.String("id", id), zap.Error(err))
				}
			}
			logger.Logger.Info("Rate limit exceeded",
				zap.String("prefix", cfg.KeyPrefix),
				zap.String("id", id),
			)
			response.Error(ctx, c, errors.TooManyRequests)
			c.Abort()
			return
		}

		c.Next(ctx)
	}
}

func LoginRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(LoginRateLimitConfig)
}

func ComplaintRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(ComplaintRateLimitConfig)
}

func GeneralRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(DefaultRateLimitConfig)
}
