package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/encore/internal/utils"
)

// CartTokenHeader carries the signed cart session token.
const CartTokenHeader = "X-Cart-Token"

const cartContextKey = "currentCartID"

// CartSession loads the cart ID from the session token into context. A
// missing, expired or tampered token is treated as no cart at all.
func CartSession(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Get(CartTokenHeader))
		if token == "" {
			return c.Next()
		}

		cartID, err := utils.ParseCartToken(secret, token)
		if err == nil {
			c.Locals(cartContextKey, cartID)
		}
		return c.Next()
	}
}

// GetCartID extracts the session cart ID from context.
func GetCartID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(cartContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}
