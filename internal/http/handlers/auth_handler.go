package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storelaunch/internal/domain"
	"storelaunch/internal/log"
	"storelaunch/internal/services"
	"storelaunch/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type registerReq struct {
	Email             string `json:"email" validate:"required,email,max=254"`
	Password          string `json:"password" validate:"required,password"`
	FullName          string `json:"fullName" validate:"max=120"`
	Phone             string `json:"phone" validate:"phone"`
	Role              string `json:"role" validate:"required,oneof=store_owner customer"`
	PreferredLanguage string `json:"preferredLanguage" validate:"omitempty,oneof=en ar"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileReq struct {
	FullName          *string `json:"fullName" validate:"omitempty,max=120"`
	Phone             *string `json:"phone" validate:"omitempty,phone"`
	PreferredLanguage *string `json:"preferredLanguage" validate:"omitempty,oneof=en ar"`
}

type authResp struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "auth.register", badRequest(err))
	}
	if err := validate.Struct(req); err != nil {
		log.Security(c, "validation.fail", map[string]any{"route": "register", "err": err.Error()})
		return respondError(c, "auth.register", err)
	}
	u, tok, err := h.Auth.Register(c.UserContext(), services.Registration{
		Email:             req.Email,
		Password:          req.Password,
		FullName:          strings.TrimSpace(req.FullName),
		Phone:             strings.TrimSpace(req.Phone),
		Role:              req.Role,
		PreferredLanguage: req.PreferredLanguage,
	})
	if err != nil {
		return respondError(c, "auth.register", err)
	}
	c.Locals(localUserID, u.ID)
	log.Audit(c, "auth.register", map[string]any{"email": u.Email, "role": u.Role})
	return c.Status(fiber.StatusCreated).JSON(authResp{User: u, Token: tok})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "auth.login", badRequest(err))
	}
	email, ok := validate.Email(req.Email)
	if !ok || req.Password == "" || len(req.Password) > 64 {
		log.Security(c, "auth.login.fail", map[string]any{"email": req.Email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(errorBody{Error: "unauthorized", Message: "Invalid email or password"})
	}
	sid, _ := c.Locals(localSession).(string)
	u, tok, err := h.Auth.Login(c.UserContext(), email, req.Password, sid)
	if err != nil {
		if errors.Is(err, services.ErrBadCreds) {
			log.Security(c, "auth.login.fail", map[string]any{"email": email})
			return c.Status(fiber.StatusUnauthorized).JSON(errorBody{Error: "unauthorized", Message: "Invalid email or password"})
		}
		return respondError(c, "auth.login", err)
	}
	c.Locals(localUserID, u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(authResp{User: u, Token: tok})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.Auth.Logout(c.UserContext(), bearer(c)); err != nil {
		return respondError(c, "auth.logout", err)
	}
	log.Audit(c, "auth.logout", nil)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GET /api/auth/me and /api/customers/profile
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

// PATCH /api/auth/me, PATCH|PUT /api/customers/profile
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	var req profileReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "profile.update", badRequest(err))
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, "profile.update", err)
	}
	u, err := h.Auth.UpdateProfile(c.UserContext(), currentUser(c).ID, services.ProfileUpdate{
		FullName:          req.FullName,
		Phone:             req.Phone,
		PreferredLanguage: req.PreferredLanguage,
	})
	if err != nil {
		return respondError(c, "profile.update", err)
	}
	log.Audit(c, "profile.update", nil)
	return c.JSON(u)
}
