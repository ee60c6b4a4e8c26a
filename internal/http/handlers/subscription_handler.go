package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storelaunch/internal/log"
	"storelaunch/internal/services"
	"storelaunch/internal/validate"
)

type SubscriptionHandler struct {
	Subs *services.SubscriptionService
}

type planReq struct {
	PlanID string `json:"planId" validate:"required,oneof=basic pro advanced"`
}

// GET /api/subscriptions/plans
func (h *SubscriptionHandler) Plans(c *fiber.Ctx) error {
	out, err := h.Subs.Plans(c.UserContext())
	if err != nil {
		return respondError(c, "plans.list", err)
	}
	return c.JSON(out)
}

// GET /api/subscriptions/store/:storeId
func (h *SubscriptionHandler) Current(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "subscription.get", err)
	}
	cur, err := h.Subs.Current(c.UserContext(), currentUser(c), storeID)
	if err != nil {
		return respondError(c, "subscription.get", err)
	}
	return c.JSON(cur)
}

// POST /api/subscriptions/store/:storeId
func (h *SubscriptionHandler) Change(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "subscription.change", err)
	}
	var req planReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "subscription.change", badRequest(err))
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, "subscription.change", err)
	}
	sub, err := h.Subs.ChangePlan(c.UserContext(), currentUser(c), storeID, req.PlanID)
	if err != nil {
		return respondError(c, "subscription.change", err)
	}
	applog.Audit(c, "subscription.change", map[string]any{"store_id": storeID, "plan_id": req.PlanID})
	return c.JSON(sub)
}
