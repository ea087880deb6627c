package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CacheControl stamps successful GET responses with a public max-age header.
// Public content routes use per-key-class TTLs from config.
func CacheControl(ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if err == nil && c.Method() == fiber.MethodGet && c.Response().StatusCode() < 400 {
			c.Set(fiber.HeaderCacheControl, fmt.Sprintf("public, max-age=%d", int(ttl.Seconds())))
		}

		return err
	}
}
