package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// VersionMiddleware records the API version a client asked for via the
// X-Api-Version header so handlers can branch on it later. Absent or
// shorthand values normalize to the current release.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", "1.0.0")
		if version == "1.0" {
			version = "1.0.0"
		}

		c.Locals("apiVersion", version)

		return c.Next()
	}
}
