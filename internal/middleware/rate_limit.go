package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/profileiq-api/internal/observability"
	"github.com/noah-isme/profileiq-api/internal/utils"
)

// RateLimitConfig configures EvaluationRateLimit.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
	// Storage backs the limiter counters. Nil keeps them in process memory.
	Storage fiber.Storage
}

// EvaluationRateLimit caps successful evaluation triggers per user over a sliding window.
// Failed requests do not consume quota.
func EvaluationRateLimit(cfg RateLimitConfig) fiber.Handler {
	if cfg.Max <= 0 {
		cfg.Max = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}

	message := fmt.Sprintf("Too many evaluation requests. Maximum %d per day.", cfg.Max)
	if cfg.Window != 24*time.Hour {
		message = fmt.Sprintf("Too many evaluation requests. Maximum %d per %s.", cfg.Max, cfg.Window)
	}

	return limiter.New(limiter.Config{
		Max:                cfg.Max,
		Expiration:         cfg.Window,
		LimiterMiddleware:  limiter.SlidingWindow{},
		SkipFailedRequests: true,
		Storage:            cfg.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID, ok := c.Locals(LocalUserID).(uint); ok && userID > 0 {
				return fmt.Sprintf("evaluation:user:%d", userID)
			}
			return "evaluation:ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			observability.EvaluationRateLimited().WithLabelValues(routeTemplate(c)).Inc()
			return utils.SendError(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// RedisStorage adapts a go-redis client to fiber.Storage so limiter state is shared across replicas.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStorage wraps client. Keys are namespaced under prefix.
func NewRedisStorage(client redis.UniversalClient, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = "profileiq:limiter:"
	}
	return &RedisStorage{client: client, prefix: prefix}
}

// Get returns nil without error when the key is absent.
func (s *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	value, err := s.client.Get(context.Background(), s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return value, err
}

func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return s.client.Set(context.Background(), s.prefix+key, val, exp).Err()
}

func (s *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	return s.client.Del(context.Background(), s.prefix+key).Err()
}

// Reset removes every key under the storage prefix.
func (s *RedisStorage) Reset() error {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close is a no-op; the client is owned by the caller.
func (s *RedisStorage) Close() error {
	return nil
}
