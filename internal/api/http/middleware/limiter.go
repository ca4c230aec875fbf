package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/hospital_backend/config"
)

// NewLimiterWithRedis shares the sliding window counters between instances.
func NewLimiterWithRedis(rdb *redis.Client, cfg config.RateLimit) fiber.Handler {
	return NewLimiter(fiberredis.NewFromConnection(rdb), cfg)
}

// NewLimiter limits requests per client IP. A nil storage keeps counters in memory.
func NewLimiter(storage fiber.Storage, cfg config.RateLimit) fiber.Handler {
	limit := cfg.Max
	if limit <= 0 {
		limit = 20
	}
	exp := time.Duration(cfg.ExpirationSeconds) * time.Second
	if exp <= 0 {
		exp = 30 * time.Second
	}

	return limiter.New(limiter.Config{
		Storage:           storage,
		Max:               limit,
		Expiration:        exp,
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
		},
	})
}
