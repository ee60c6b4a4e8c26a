package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storelaunch/internal/domain"
	applog "storelaunch/internal/log"
	"storelaunch/internal/services"
	"storelaunch/internal/validate"
)

type CartHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
}

type addItemReq struct {
	ProductID string `json:"productId" validate:"required,rid"`
	Quantity  int    `json:"quantity" validate:"min=1,max=1000"`
}

type setItemReq struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=1000"`
}

type checkoutReq struct {
	ShippingAddress string `json:"shippingAddress" validate:"required,max=500"`
	ShippingMethod  string `json:"shippingMethod" validate:"max=100"`
}

// pathID reads and checks an identifier route parameter.
func pathID(c *fiber.Ctx, name string) (string, error) {
	id, ok := validate.ID(c.Params(name))
	if !ok {
		return "", domain.Invalid("bad %s", name)
	}
	return id, nil
}

// GET /api/cart/:storeId
func (h *CartHandler) View(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "cart.view", err)
	}
	v, err := h.Cart.View(c.UserContext(), storeID, identity(c))
	if err != nil {
		return respondError(c, "cart.view", err)
	}
	return c.JSON(v)
}

// POST /api/cart/:storeId/items
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "cart.add", err)
	}
	req := addItemReq{Quantity: 1}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "cart.add", badRequest(err))
	}
	if err := validate.Struct(req); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"route": "cart.add", "err": err.Error()})
		return respondError(c, "cart.add", err)
	}
	v, err := h.Cart.AddItem(c.UserContext(), storeID, identity(c), req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, "cart.add", err)
	}
	applog.Info(c, "cart.add", map[string]any{"store_id": storeID, "product_id": req.ProductID, "qty": req.Quantity})
	return c.JSON(v)
}

// PATCH /api/cart/:storeId/items/:itemId
func (h *CartHandler) SetItem(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "cart.update", err)
	}
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return respondError(c, "cart.update", err)
	}
	var req setItemReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "cart.update", badRequest(err))
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, "cart.update", err)
	}
	v, err := h.Cart.SetItemQuantity(c.UserContext(), storeID, identity(c), itemID, *req.Quantity)
	if err != nil {
		return respondError(c, "cart.update", err)
	}
	return c.JSON(v)
}

// DELETE /api/cart/:storeId/items/:itemId
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "cart.remove", err)
	}
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return respondError(c, "cart.remove", err)
	}
	if err := h.Cart.RemoveItem(c.UserContext(), storeID, identity(c), itemID); err != nil {
		return respondError(c, "cart.remove", err)
	}
	return c.JSON(fiber.Map{"message": "Item removed"})
}

// POST /api/cart/:storeId/checkout
func (h *CartHandler) PlaceOrder(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "checkout", err)
	}
	var req checkoutReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "checkout", badRequest(err))
	}
	if err := validate.Struct(req); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"route": "checkout", "err": err.Error()})
		return respondError(c, "checkout", err)
	}
	r, err := h.Checkout.Checkout(c.UserContext(), storeID, identity(c), services.CheckoutRequest{
		ShippingAddress: req.ShippingAddress,
		ShippingMethod:  req.ShippingMethod,
	})
	if err != nil {
		return respondError(c, "checkout", err)
	}
	applog.Audit(c, "order.placed", map[string]any{
		"order_id": r.Order.ID,
		"store_id": storeID,
		"total":    r.Order.Total.StringFixed(2),
		"items":    len(r.Items),
	})
	return c.Status(fiber.StatusCreated).JSON(r)
}
