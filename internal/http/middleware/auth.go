package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserIDLocalKey is the fiber locals key holding the authenticated user id.
const UserIDLocalKey = "user_id"

// TokenVerifier resolves an access token to a user id.
type TokenVerifier interface {
	VerifyAccess(token string) (string, error)
}

// BearerAuth rejects requests without a valid "Authorization: Bearer" access token.
// The rejection is returned as a *fiber.Error so the app's error handler renders it.
func BearerAuth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}
		userID, err := v.VerifyAccess(strings.TrimSpace(token))
		if err != nil {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return fiber.NewError(fiber.StatusUnauthorized, "Could not validate credentials")
		}
		c.Locals(UserIDLocalKey, userID)
		return c.Next()
	}
}

// GetUserID returns the id stored by BearerAuth, or "" on public routes.
func GetUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}
