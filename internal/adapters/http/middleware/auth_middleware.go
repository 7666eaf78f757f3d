package middleware

import (
	"errors"
	"strings"

	"sdi-portal/internal/config"
	"sdi-portal/internal/core/domain"
	"sdi-portal/internal/pkg/jwt"
	"sdi-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// actorKey is the locals key holding the authenticated actor
const actorKey = "actor"

// AuthMiddleware validates the access token and stores the actor for
// downstream handlers. The token is read from the access_token cookie
// first, then from the Authorization header.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies("access_token")

		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		actor := domain.Actor{
			ID:        claims.UserID,
			Username:  claims.Username,
			ShortName: claims.ShortName,
			Role:      domain.Role(claims.Role),
		}
		if !actor.Role.Valid() {
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// GetActor returns the authenticated actor set by AuthMiddleware
func GetActor(c *fiber.Ctx) (domain.Actor, bool) {
	actor, ok := c.Locals(actorKey).(domain.Actor)
	return actor, ok
}

// RequireAction gates a route on a single capability from the role
// capability table
func RequireAction(action domain.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := GetActor(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !actor.Can(action) {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}
