package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"welfare-committee-backend/src/services"
	"welfare-committee-backend/src/utils"
)

// Authenticator validates a bearer token and returns its claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*utils.JWTClaims, error)
}

// AuthJWT guards admin routes. Claims are stored under the "claims" local.
func AuthJWT(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return utils.HandleError(c, fiber.StatusUnauthorized, "Missing or invalid Authorization header")
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims, err := auth.Authenticate(c.UserContext(), tokenStr)
		if err != nil {
			if errors.Is(err, services.ErrInvalidToken) {
				return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid or expired token")
			}
			return utils.HandleError(c, fiber.StatusServiceUnavailable, "Session store unavailable")
		}

		c.Locals("claims", claims)
		c.Locals("username", claims.Username)
		return c.Next()
	}
}
