package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storelaunch/internal/log"
	"storelaunch/internal/services"
	"storelaunch/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type orderUpdateReq struct {
	Status         *string `json:"status" validate:"omitempty,oneof=pending confirmed processing shipped delivered cancelled"`
	TrackingNumber *string `json:"trackingNumber" validate:"omitempty,max=100"`
}

// GET /api/orders/my
func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	out, err := h.Orders.ListMine(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return respondError(c, "orders.my.list", err)
	}
	return c.JSON(out)
}

// GET /api/orders/my/:id
func (h *OrderHandler) GetMine(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, "orders.my.get", err)
	}
	r, err := h.Orders.GetMine(c.UserContext(), currentUser(c).ID, id)
	if err != nil {
		return respondError(c, "orders.my.get", err)
	}
	return c.JSON(r)
}

// POST /api/orders/my/:id/confirm-payment
func (h *OrderHandler) ConfirmPayment(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, "orders.pay", err)
	}
	r, err := h.Orders.ConfirmPayment(c.UserContext(), currentUser(c).ID, id)
	if err != nil {
		return respondError(c, "orders.pay", err)
	}
	applog.Audit(c, "orders.pay", map[string]any{"order_id": id})
	return c.JSON(r)
}

// GET /api/orders/store/:storeId
func (h *OrderHandler) ListStore(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "orders.store.list", err)
	}
	out, err := h.Orders.ListForStore(c.UserContext(), currentUser(c), storeID)
	if err != nil {
		return respondError(c, "orders.store.list", err)
	}
	return c.JSON(out)
}

// GET /api/orders/store/:storeId/:orderId
func (h *OrderHandler) GetStore(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "orders.store.get", err)
	}
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return respondError(c, "orders.store.get", err)
	}
	d, err := h.Orders.GetForStore(c.UserContext(), currentUser(c), storeID, orderID)
	if err != nil {
		return respondError(c, "orders.store.get", err)
	}
	return c.JSON(d)
}

// PATCH /api/orders/store/:storeId/:orderId
func (h *OrderHandler) UpdateStore(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "orders.store.update", err)
	}
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return respondError(c, "orders.store.update", err)
	}
	var req orderUpdateReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "orders.store.update", badRequest(err))
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, "orders.store.update", err)
	}
	d, err := h.Orders.Update(c.UserContext(), currentUser(c), storeID, orderID, services.OrderUpdate{
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		return respondError(c, "orders.store.update", err)
	}
	fields := map[string]any{"order_id": orderID, "store_id": storeID, "status": string(d.Status)}
	if req.TrackingNumber != nil {
		fields["tracking"] = *req.TrackingNumber
	}
	applog.Audit(c, "orders.store.update", fields)
	return c.JSON(d)
}
