package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"storelaunch/internal/domain"
	"storelaunch/internal/log"
	"storelaunch/internal/services"
	"storelaunch/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

type productReq struct {
	CategoryID     *string          `json:"categoryId" validate:"omitempty,max=64"`
	NameEn         *string          `json:"nameEn" validate:"omitempty,max=200"`
	NameAr         *string          `json:"nameAr" validate:"omitempty,max=200"`
	DescriptionEn  *string          `json:"descriptionEn" validate:"omitempty,max=5000"`
	DescriptionAr  *string          `json:"descriptionAr" validate:"omitempty,max=5000"`
	Price          *decimal.Decimal `json:"price" validate:"omitempty,money"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice" validate:"omitempty,money"`
	SKU            *string          `json:"sku" validate:"omitempty,max=64"`
	StockQuantity  *int             `json:"stockQuantity" validate:"omitempty,min=0"`
	ImageURL       *string          `json:"imageUrl" validate:"omitempty,max=2048"`
	IsActive       *bool            `json:"isActive"`
}

type categoryReq struct {
	NameEn   string `json:"nameEn" validate:"required,max=120"`
	NameAr   string `json:"nameAr" validate:"max=120"`
	ParentID string `json:"parentId" validate:"omitempty,rid"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// GET /api/products/store/:storeId
func (h *ProductHandler) Storefront(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "products.list", err)
	}
	q := c.Query("q")
	if len(q) > 100 {
		q = q[:100]
	}
	cat := ""
	if raw := c.Query("categoryId"); raw != "" {
		var ok bool
		if cat, ok = validate.ID(raw); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "categoryId"})
			return respondError(c, "products.list", domain.Invalid("bad categoryId"))
		}
	}
	out, err := h.Catalog.Storefront(c.UserContext(), storeID, q, cat)
	if err != nil {
		return respondError(c, "products.list", err)
	}
	return c.JSON(out)
}

// GET /api/products/store/:storeId/categories
func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "categories.list", err)
	}
	out, err := h.Catalog.StoreCategories(c.UserContext(), storeID)
	if err != nil {
		return respondError(c, "categories.list", err)
	}
	return c.JSON(out)
}

// GET /api/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, "products.get", err)
	}
	p, err := h.Catalog.Product(c.UserContext(), id)
	if err != nil {
		return respondError(c, "products.get", err)
	}
	return c.JSON(p)
}

// GET /api/products/manage/:storeId
func (h *ProductHandler) Manage(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "products.manage", err)
	}
	out, err := h.Catalog.ManageProducts(c.UserContext(), currentUser(c), storeID)
	if err != nil {
		return respondError(c, "products.manage", err)
	}
	return c.JSON(out)
}

// POST /api/products/manage/:storeId
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "products.create", err)
	}
	var req productReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "products.create", badRequest(err))
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, "products.create", err)
	}
	if req.Price == nil {
		return respondError(c, "products.create", domain.Invalid("price is required"))
	}
	in := services.NewProduct{
		CategoryID:    str(req.CategoryID),
		NameEn:        str(req.NameEn),
		NameAr:        str(req.NameAr),
		DescriptionEn: str(req.DescriptionEn),
		DescriptionAr: str(req.DescriptionAr),
		Price:         *req.Price,
		SKU:           str(req.SKU),
		ImageURL:      str(req.ImageURL),
	}
	if req.CompareAtPrice != nil {
		in.CompareAtPrice = *req.CompareAtPrice
	}
	if req.StockQuantity != nil {
		in.StockQuantity = *req.StockQuantity
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), currentUser(c), storeID, in)
	if err != nil {
		return respondError(c, "products.create", err)
	}
	log.Audit(c, "products.create", map[string]any{"product_id": p.ID, "store_id": storeID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, "products.update", err)
	}
	var req productReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "products.update", badRequest(err))
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, "products.update", err)
	}
	p, err := h.Catalog.UpdateProduct(c.UserContext(), currentUser(c), id, services.ProductChanges{
		CategoryID:     req.CategoryID,
		NameEn:         req.NameEn,
		NameAr:         req.NameAr,
		DescriptionEn:  req.DescriptionEn,
		DescriptionAr:  req.DescriptionAr,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		SKU:            req.SKU,
		StockQuantity:  req.StockQuantity,
		ImageURL:       req.ImageURL,
		Active:         req.IsActive,
	})
	if err != nil {
		return respondError(c, "products.update", err)
	}
	log.Audit(c, "products.update", map[string]any{"product_id": id})
	return c.JSON(p)
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, "products.delete", err)
	}
	if err := h.Catalog.DeactivateProduct(c.UserContext(), currentUser(c), id); err != nil {
		return respondError(c, "products.delete", err)
	}
	log.Audit(c, "products.deactivate", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"message": "Product deactivated"})
}

// GET /api/products/manage/:storeId/categories
func (h *ProductHandler) ManageCategories(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "categories.manage", err)
	}
	out, err := h.Catalog.ManageCategories(c.UserContext(), currentUser(c), storeID)
	if err != nil {
		return respondError(c, "categories.manage", err)
	}
	return c.JSON(out)
}

// POST /api/products/manage/:storeId/categories
func (h *ProductHandler) CreateCategory(c *fiber.Ctx) error {
	storeID, err := pathID(c, "storeId")
	if err != nil {
		return respondError(c, "categories.create", err)
	}
	var req categoryReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "categories.create", badRequest(err))
	}
	if err := validate.Struct(req); err != nil {
		return respondError(c, "categories.create", err)
	}
	cat, err := h.Catalog.CreateCategory(c.UserContext(), currentUser(c), storeID, domain.Category{
		NameEn: strings.TrimSpace(req.NameEn), NameAr: strings.TrimSpace(req.NameAr), ParentID: req.ParentID,
	})
	if err != nil {
		return respondError(c, "categories.create", err)
	}
	log.Audit(c, "categories.create", map[string]any{"category_id": cat.ID, "store_id": storeID})
	return c.Status(fiber.StatusCreated).JSON(cat)
}
