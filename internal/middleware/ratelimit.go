package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware is a redis fixed-window limiter. Requests are counted
// per caller and path; authenticated callers are keyed by address so a
// shared NAT does not starve them. Redis being down fails open.
func RateLimitMiddleware(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := GetAddress(c)
		if caller == "" {
			caller = c.IP()
		}
		key := fmt.Sprintf("ratelimit:%s:%s", caller, c.Path())

		ctx := c.Context()
		pipe := rdb.TxPipeline()
		count := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		if _, err := pipe.Exec(ctx); err != nil {
			return c.Next()
		}

		if count.Val() > int64(limit) {
			c.Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}

		return c.Next()
	}
}
