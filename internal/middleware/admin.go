package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminKeyHeader carries the key that unlocks catalog writes.
const AdminKeyHeader = "X-Admin-Key"

// AdminOnly accepts requests presenting the admin key, either in
// X-Admin-Key or as a Bearer token. With no key configured every request
// is refused.
func AdminOnly(adminKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if adminKey == "" {
			return fiber.NewError(fiber.StatusServiceUnavailable, "admin access is not configured")
		}

		presented := c.Get(AdminKeyHeader)
		if presented == "" {
			parts := strings.SplitN(c.Get("Authorization"), " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				presented = parts[1]
			}
		}
		if presented == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing admin key")
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(adminKey)) != 1 {
			return fiber.NewError(fiber.StatusForbidden, "invalid admin key")
		}

		return c.Next()
	}
}
