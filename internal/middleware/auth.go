package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/vortex07x/steamsurf/internal/model"
	"github.com/vortex07x/steamsurf/internal/service"
)

const userLocal = "user"

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAuth rejects requests without a valid token for an active user.
func RequireAuth(a Authenticator) fiber.Handler {
	return func(c fiber.Ctx) error {
		u, err := a.Authenticate(c.Context(), bearerToken(c))
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", service.Message(err, "Not authorized"))
			}
			log.Error().Err(err).Msg("authentication lookup failed")
			return ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed")
		}
		c.Locals(userLocal, u)
		return c.Next()
	}
}

// OptionalAuth attaches the user when the token is valid and otherwise
// continues anonymously.
func OptionalAuth(a Authenticator) fiber.Handler {
	return func(c fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if u, err := a.Authenticate(c.Context(), token); err == nil {
				c.Locals(userLocal, u)
			}
		}
		return c.Next()
	}
}

// AdminOnly must follow RequireAuth.
func AdminOnly() fiber.Handler {
	return func(c fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Not authorized")
		}
		if !u.IsAdmin() {
			return ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", "Access denied. Admin only.")
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c fiber.Ctx) *model.User {
	u, _ := c.Locals(userLocal).(*model.User)
	return u
}

// UserID returns the authenticated user's id, or "".
func UserID(c fiber.Ctx) string {
	if u := CurrentUser(c); u != nil {
		return u.ID
	}
	return ""
}
