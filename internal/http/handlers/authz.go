package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storelaunch/internal/domain"
	applog "storelaunch/internal/log"
	"storelaunch/internal/services"
)

const (
	localUser    = "user"
	localUserID  = "user_id"
	localSession = "session_token"

	sessionHeader = "X-Session-Id"
)

func bearer(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Identify resolves the caller once per request: a valid bearer token
// attaches the user, an X-Session-Id header the anonymous session. A bad
// token is not rejected here; protected routes answer 401 via RequireUser.
func Identify(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := bearer(c); tok != "" {
			u, err := auth.CurrentUser(c.UserContext(), tok)
			if err == nil {
				c.Locals(localUser, u)
				c.Locals(localUserID, u.ID)
			} else {
				applog.Security(c, "auth.token.invalid", nil)
			}
		}
		if sid := strings.TrimSpace(c.Get(sessionHeader)); sid != "" && len(sid) <= 128 {
			c.Locals(localSession, sid)
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(localUser).(*domain.User)
	return u
}

// identity is the cart owner for this request.
func identity(c *fiber.Ctx) domain.Identity {
	if u := currentUser(c); u != nil {
		return domain.Authenticated(u.ID)
	}
	if sid, ok := c.Locals(localSession).(string); ok && sid != "" {
		return domain.Anonymous(sid)
	}
	return domain.Identity{}
}

// RequireUser enforces a valid bearer token.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(errorBody{Error: "unauthorized", Message: "authentication required"})
		}
		return c.Next()
	}
}

// RequireRole enforces a signed-in user holding one of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(errorBody{Error: "unauthorized", Message: "authentication required"})
		}
		for _, r := range roles {
			if u.Role == r {
				return c.Next()
			}
		}
		applog.Security(c, "access.denied.role", map[string]any{"role": u.Role, "need": roles})
		return c.Status(fiber.StatusForbidden).JSON(errorBody{Error: "forbidden", Message: "insufficient role"})
	}
}
