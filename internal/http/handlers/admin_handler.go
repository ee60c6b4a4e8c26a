package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storelaunch/internal/log"
	"storelaunch/internal/services"
	"storelaunch/internal/validate"
)

type AdminHandler struct {
	Admin *services.AdminService
}

type userPatchReq struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type suspendReq struct {
	Suspended *bool `json:"suspended" validate:"required"`
}

// GET /api/admin/users
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	out, err := h.Admin.Users(c.UserContext())
	if err != nil {
		return respondError(c, "admin.users.list", err)
	}
	return c.JSON(out)
}

// PATCH /api/admin/users/:id
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, "admin.users.update", err)
	}
	var req userPatchReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "admin.users.update", badRequest(err))
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, "admin.users.update", err)
	}
	u, err := h.Admin.SetUserActive(c.UserContext(), currentUser(c), id, *req.IsActive)
	if err != nil {
		return respondError(c, "admin.users.update", err)
	}
	applog.Audit(c, "admin.users.update", map[string]any{"target_id": id, "is_active": *req.IsActive})
	return c.JSON(u)
}

// GET /api/admin/stores
func (h *AdminHandler) Stores(c *fiber.Ctx) error {
	out, err := h.Admin.Stores(c.UserContext())
	if err != nil {
		return respondError(c, "admin.stores.list", err)
	}
	return c.JSON(out)
}

// PATCH /api/admin/stores/:id/suspend
func (h *AdminHandler) SuspendStore(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, "admin.stores.suspend", err)
	}
	var req suspendReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "admin.stores.suspend", badRequest(err))
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, "admin.stores.suspend", err)
	}
	st, err := h.Admin.SetStoreSuspended(c.UserContext(), currentUser(c), id, *req.Suspended)
	if err != nil {
		return respondError(c, "admin.stores.suspend", err)
	}
	applog.Audit(c, "admin.stores.suspend", map[string]any{"store_id": id, "suspended": *req.Suspended})
	return c.JSON(st)
}

// GET /api/admin/audit-logs
func (h *AdminHandler) AuditLogs(c *fiber.Ctx) error {
	out, err := h.Admin.AuditLog(c.UserContext())
	if err != nil {
		return respondError(c, "admin.audit.list", err)
	}
	return c.JSON(out)
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	st, err := h.Admin.Stats(c.UserContext())
	if err != nil {
		return respondError(c, "admin.stats", err)
	}
	return c.JSON(st)
}
