package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"imgvault/internal/auth"
)

// UserIDLocalKey is the key under which RequireAuth stores the
// authenticated user's id in Fiber's context locals.
const UserIDLocalKey = "user_id"

// RequireAuth validates the bearer token on every request and stores the
// resolved user id in context locals. Requests without a valid token are
// rejected with 401 before any handler runs.
func RequireAuth(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		userID, err := tokens.Verify(tokenString)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(UserIDLocalKey, userID)
		return c.Next()
	}
}

// UserID extracts the authenticated user id stored by RequireAuth.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}
