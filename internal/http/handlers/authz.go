package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

const localUser = "user"

func bearerToken(c *fiber.Ctx) string {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Authenticate attaches the user behind a valid bearer token, if any. It never rejects.
func Authenticate(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := bearerToken(c); tok != "" {
			if u, err := auth.CurrentUser(c.UserContext(), tok); err == nil && u != nil {
				c.Locals(localUser, u)
				c.Locals(applog.UserIDKey, u.ID)
			}
		}
		return c.Next()
	}
}

// RequireUser rejects requests without a valid session.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := resolveUser(c, auth); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAdmin enforces an authenticated admin.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := resolveUser(c, auth)
		if err != nil {
			return err
		}
		if u.Role != domain.RoleAdmin {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": u.ID})
			return errAdminOnly
		}
		return c.Next()
	}
}

func resolveUser(c *fiber.Ctx, auth *services.AuthService) (*domain.User, error) {
	if u := currentUser(c); u != nil {
		return u, nil
	}
	u, err := auth.CurrentUser(c.UserContext(), bearerToken(c))
	if err != nil {
		return nil, err
	}
	c.Locals(localUser, u)
	c.Locals(applog.UserIDKey, u.ID)
	return u, nil
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(localUser).(*domain.User)
	return u
}

// actor turns the request's user into the explicit identity services expect.
// Anonymous callers get the zero Actor.
func actor(c *fiber.Ctx) services.Actor {
	if u := currentUser(c); u != nil {
		return services.Actor{UserID: u.ID, Role: u.Role}
	}
	return services.Actor{}
}

var errAdminOnly = apperr.New(apperr.Forbidden, "Admin access required")
