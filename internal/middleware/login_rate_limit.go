package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const loginWindow = time.Minute

// LoginRateLimit limits login attempts per customer id or TCKN, or per IP
// when the body names neither. Without Redis it is a no-op.
func LoginRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			CustomerID string `json:"customer_id"`
			TCKN       string `json:"tckn"`
		}
		_ = c.BodyParser(&req)
		subject := strings.TrimSpace(req.CustomerID)
		if subject == "" {
			subject = strings.TrimSpace(req.TCKN)
		}
		if subject == "" {
			subject = c.IP()
		}

		ctx := c.UserContext()
		key := "rl:login:" + subject
		cnt, err := cache.Incr(ctx, key).Result()
		if err != nil {
			// fail open
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(ctx, key, loginWindow)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many login attempts, try again later")
		}
		return c.Next()
	}
}
