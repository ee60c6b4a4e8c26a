package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"storelaunch/internal/domain"
	"storelaunch/internal/log"
	"storelaunch/internal/services"
	"storelaunch/internal/validate"
)

type StoreHandler struct {
	Catalog *services.CatalogService
}

type storeReq struct {
	Name        *string         `json:"name" validate:"omitempty,max=120"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	LogoURL     *string         `json:"logoUrl" validate:"omitempty,max=2048"`
	Theme       *string         `json:"theme" validate:"omitempty,max=40"`
	ThemeColors json.RawMessage `json:"themeColors"`
}

type shippingReq struct {
	Name    string          `json:"name" validate:"required,max=100"`
	Regions string          `json:"regions" validate:"max=500"`
	Price   decimal.Decimal `json:"price" validate:"money"`
}

// GET /api/stores/public/:slug
func (h *StoreHandler) Public(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		return respondError(c, "stores.public", domain.Missing("store"))
	}
	st, err := h.Catalog.StoreBySlug(c.UserContext(), slug)
	if err != nil {
		return respondError(c, "stores.public", err)
	}
	return c.JSON(st)
}

// GET /api/stores/my
func (h *StoreHandler) Mine(c *fiber.Ctx) error {
	out, err := h.Catalog.MyStores(c.UserContext(), currentUser(c))
	if err != nil {
		return respondError(c, "stores.my", err)
	}
	return c.JSON(out)
}

// GET /api/stores/:id
func (h *StoreHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, "stores.get", err)
	}
	st, err := h.Catalog.Store(c.UserContext(), currentUser(c), id)
	if err != nil {
		return respondError(c, "stores.get", err)
	}
	return c.JSON(st)
}

// PUT /api/stores/:id
func (h *StoreHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, "stores.update", err)
	}
	var req storeReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "stores.update", badRequest(err))
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, "stores.update", err)
	}
	in := services.StoreSettings{
		Name: req.Name, Description: req.Description, LogoURL: req.LogoURL, Theme: req.Theme,
	}
	if len(req.ThemeColors) > 0 && string(req.ThemeColors) != "null" {
		colors := string(req.ThemeColors)
		in.ThemeColors = &colors
	}
	st, err := h.Catalog.UpdateStore(c.UserContext(), currentUser(c), id, in)
	if err != nil {
		return respondError(c, "stores.update", err)
	}
	log.Audit(c, "stores.update", map[string]any{"store_id": id})
	return c.JSON(st)
}

// GET /api/stores/:id/shipping-options
func (h *StoreHandler) ShippingOptions(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, "shipping.list", err)
	}
	out, err := h.Catalog.ShippingOptions(c.UserContext(), currentUser(c), id)
	if err != nil {
		return respondError(c, "shipping.list", err)
	}
	return c.JSON(out)
}

// POST /api/stores/:id/shipping-options
func (h *StoreHandler) CreateShippingOption(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, "shipping.create", err)
	}
	var req shippingReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "shipping.create", badRequest(err))
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, "shipping.create", err)
	}
	o, err := h.Catalog.CreateShippingOption(c.UserContext(), currentUser(c), id, domain.ShippingOption{
		Name: req.Name, Regions: req.Regions, Price: req.Price,
	})
	if err != nil {
		return respondError(c, "shipping.create", err)
	}
	log.Audit(c, "shipping.create", map[string]any{"store_id": id, "option_id": o.ID})
	return c.Status(fiber.StatusCreated).JSON(o)
}
