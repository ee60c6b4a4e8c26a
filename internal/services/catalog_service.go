package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storelaunch/internal/domain"
	"storelaunch/internal/repos"
)

// ErrPlanLimit is returned when a store already holds as many active
// products as its plan allows.
var ErrPlanLimit = fmt.Errorf("product limit of plan reached: %w", domain.ErrForbidden)

type CatalogService struct {
	DB     *sqlx.DB
	Access *AccessService
}

func NewCatalogService(db *sqlx.DB, access *AccessService) *CatalogService {
	return &CatalogService{DB: db, Access: access}
}

// PublicStore is the storefront view of a store.
type PublicStore struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl"`
	Theme       string `json:"theme"`
	ThemeColors string `json:"themeColors,omitempty"`
}

type PublicProduct struct {
	domain.Product
	StoreName string `json:"storeName"`
	StoreSlug string `json:"storeSlug"`
}

func (s *CatalogService) StoreBySlug(ctx context.Context, slug string) (PublicStore, error) {
	st, err := repos.NewStoreRepo(s.DB).BySlug(ctx, slug)
	if err != nil {
		return PublicStore{}, err
	}
	if !st.Open() {
		return PublicStore{}, domain.ErrStoreUnavailable
	}
	return PublicStore{
		ID: st.ID, Name: st.Name, Slug: st.Slug, Description: st.Description,
		LogoURL: st.LogoURL, Theme: st.Theme, ThemeColors: st.ThemeColors,
	}, nil
}

func (s *CatalogService) Storefront(ctx context.Context, storeID, q, categoryID string) ([]domain.Product, error) {
	if _, err := openStore(ctx, s.DB, storeID); err != nil {
		return nil, err
	}
	return repos.NewProductRepo(s.DB).Search(ctx, storeID, q, categoryID)
}

func (s *CatalogService) StoreCategories(ctx context.Context, storeID string) ([]domain.Category, error) {
	if _, err := openStore(ctx, s.DB, storeID); err != nil {
		return nil, err
	}
	return repos.NewCategoryRepo(s.DB).ListForStore(ctx, storeID)
}

// Product returns an active product of an open store.
func (s *CatalogService) Product(ctx context.Context, id string) (PublicProduct, error) {
	p, err := repos.NewProductRepo(s.DB).Get(ctx, id)
	if err != nil {
		return PublicProduct{}, err
	}
	if !p.Active {
		return PublicProduct{}, domain.Missing("product")
	}
	st, err := openStore(ctx, s.DB, p.StoreID)
	if err != nil {
		return PublicProduct{}, domain.Missing("product")
	}
	return PublicProduct{Product: p, StoreName: st.Name, StoreSlug: st.Slug}, nil
}

func (s *CatalogService) MyStores(ctx context.Context, u *domain.User) ([]domain.Store, error) {
	return repos.NewStoreRepo(s.DB).ListByOwner(ctx, u.ID)
}

func (s *CatalogService) Store(ctx context.Context, u *domain.User, storeID string) (domain.Store, error) {
	return s.Access.RequireManager(ctx, u, storeID)
}

type StoreSettings struct {
	Name        *string
	Description *string
	LogoURL     *string
	Theme       *string
	ThemeColors *string
}

// UpdateStore changes storefront settings; owners only.
func (s *CatalogService) UpdateStore(ctx context.Context, u *domain.User, storeID string, in StoreSettings) (domain.Store, error) {
	if _, err := s.Access.RequireOwner(ctx, u, storeID); err != nil {
		return domain.Store{}, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return domain.Store{}, domain.Invalid("name must not be empty")
	}
	stores := repos.NewStoreRepo(s.DB)
	if err := stores.Update(ctx, storeID, repos.StorePatch{
		Name: in.Name, Description: in.Description, LogoURL: in.LogoURL, Theme: in.Theme, ThemeColors: in.ThemeColors,
	}); err != nil {
		return domain.Store{}, err
	}
	return stores.ByID(ctx, storeID)
}

func (s *CatalogService) ManageProducts(ctx context.Context, u *domain.User, storeID string) ([]domain.Product, error) {
	if _, err := s.Access.RequireManager(ctx, u, storeID); err != nil {
		return nil, err
	}
	return repos.NewProductRepo(s.DB).ListForStore(ctx, storeID)
}

type NewProduct struct {
	CategoryID     string
	NameEn         string
	NameAr         string
	DescriptionEn  string
	DescriptionAr  string
	Price          decimal.Decimal
	CompareAtPrice decimal.Decimal
	SKU            string
	StockQuantity  int
	ImageURL       string
}

// CreateProduct adds a product, holding the store to its plan's limit.
func (s *CatalogService) CreateProduct(ctx context.Context, u *domain.User, storeID string, in NewProduct) (domain.Product, error) {
	if strings.TrimSpace(in.NameEn) == "" {
		return domain.Product{}, domain.Invalid("nameEn is required")
	}
	if in.Price.IsNegative() || in.CompareAtPrice.IsNegative() || in.StockQuantity < 0 {
		return domain.Product{}, domain.Invalid("price and stock must not be negative")
	}
	st, err := s.Access.RequireManager(ctx, u, storeID)
	if err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{
		ID:             uuid.NewString(),
		StoreID:        storeID,
		CategoryID:     in.CategoryID,
		NameEn:         strings.TrimSpace(in.NameEn),
		NameAr:         strings.TrimSpace(in.NameAr),
		DescriptionEn:  in.DescriptionEn,
		DescriptionAr:  in.DescriptionAr,
		Price:          in.Price.Round(2),
		CompareAtPrice: in.CompareAtPrice.Round(2),
		SKU:            in.SKU,
		StockQuantity:  in.StockQuantity,
		ImageURL:       in.ImageURL,
		Active:         true,
	}
	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if p.CategoryID != "" {
			if err := categoryOf(ctx, tx, storeID, p.CategoryID); err != nil {
				return err
			}
		}
		plan, err := repos.NewSubscriptionRepo(tx).Plan(ctx, st.SubscriptionPlan)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		products := repos.NewProductRepo(tx)
		if err == nil && plan.MaxProducts >= 0 {
			n, err := products.CountForStore(ctx, storeID)
			if err != nil {
				return err
			}
			if n >= plan.MaxProducts {
				return ErrPlanLimit
			}
		}
		return products.Create(ctx, p)
	})
	if err != nil {
		return domain.Product{}, err
	}
	return repos.NewProductRepo(s.DB).Get(ctx, p.ID)
}

func categoryOf(ctx context.Context, q sqlx.ExtContext, storeID, categoryID string) error {
	c, err := repos.NewCategoryRepo(q).Get(ctx, categoryID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && c.StoreID != storeID) {
		return domain.Invalid("unknown category")
	}
	return err
}

type ProductChanges struct {
	CategoryID     *string
	NameEn         *string
	NameAr         *string
	DescriptionEn  *string
	DescriptionAr  *string
	Price          *decimal.Decimal
	CompareAtPrice *decimal.Decimal
	SKU            *string
	StockQuantity  *int
	ImageURL       *string
	Active         *bool
}

// UpdateProduct edits a product. Orders already placed keep their own
// snapshot of name and price.
func (s *CatalogService) UpdateProduct(ctx context.Context, u *domain.User, productID string, in ProductChanges) (domain.Product, error) {
	products := repos.NewProductRepo(s.DB)
	p, err := products.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if _, err := s.Access.RequireManager(ctx, u, p.StoreID); err != nil {
		return domain.Product{}, err
	}
	if in.NameEn != nil && strings.TrimSpace(*in.NameEn) == "" {
		return domain.Product{}, domain.Invalid("nameEn must not be empty")
	}
	if (in.Price != nil && in.Price.IsNegative()) || (in.CompareAtPrice != nil && in.CompareAtPrice.IsNegative()) ||
		(in.StockQuantity != nil && *in.StockQuantity < 0) {
		return domain.Product{}, domain.Invalid("price and stock must not be negative")
	}
	if in.CategoryID != nil && *in.CategoryID != "" {
		if err := categoryOf(ctx, s.DB, p.StoreID, *in.CategoryID); err != nil {
			return domain.Product{}, err
		}
	}
	if err := products.Update(ctx, productID, repos.ProductPatch{
		CategoryID: in.CategoryID, NameEn: in.NameEn, NameAr: in.NameAr,
		DescriptionEn: in.DescriptionEn, DescriptionAr: in.DescriptionAr,
		Price: in.Price, CompareAtPrice: in.CompareAtPrice, SKU: in.SKU,
		StockQuantity: in.StockQuantity, ImageURL: in.ImageURL, Active: in.Active,
	}); err != nil {
		return domain.Product{}, err
	}
	return products.Get(ctx, productID)
}

// DeactivateProduct hides a product; its rows stay for order history.
func (s *CatalogService) DeactivateProduct(ctx context.Context, u *domain.User, productID string) error {
	products := repos.NewProductRepo(s.DB)
	p, err := products.Get(ctx, productID)
	if err != nil {
		return err
	}
	if _, err := s.Access.RequireManager(ctx, u, p.StoreID); err != nil {
		return err
	}
	return products.Deactivate(ctx, productID)
}

func (s *CatalogService) CreateCategory(ctx context.Context, u *domain.User, storeID string, c domain.Category) (domain.Category, error) {
	if _, err := s.Access.RequireManager(ctx, u, storeID); err != nil {
		return domain.Category{}, err
	}
	if strings.TrimSpace(c.NameEn) == "" {
		return domain.Category{}, domain.Invalid("nameEn is required")
	}
	if c.ParentID != "" {
		if err := categoryOf(ctx, s.DB, storeID, c.ParentID); err != nil {
			return domain.Category{}, err
		}
	}
	c.ID = uuid.NewString()
	c.StoreID = storeID
	cats := repos.NewCategoryRepo(s.DB)
	if err := cats.Create(ctx, c); err != nil {
		return domain.Category{}, err
	}
	return cats.Get(ctx, c.ID)
}

func (s *CatalogService) ManageCategories(ctx context.Context, u *domain.User, storeID string) ([]domain.Category, error) {
	if _, err := s.Access.RequireManager(ctx, u, storeID); err != nil {
		return nil, err
	}
	return repos.NewCategoryRepo(s.DB).ListForStore(ctx, storeID)
}

func (s *CatalogService) ShippingOptions(ctx context.Context, u *domain.User, storeID string) ([]domain.ShippingOption, error) {
	if _, err := s.Access.RequireManager(ctx, u, storeID); err != nil {
		return nil, err
	}
	return repos.NewShippingRepo(s.DB).ListForStore(ctx, storeID)
}

func (s *CatalogService) CreateShippingOption(ctx context.Context, u *domain.User, storeID string, o domain.ShippingOption) (domain.ShippingOption, error) {
	if _, err := s.Access.RequireManager(ctx, u, storeID); err != nil {
		return domain.ShippingOption{}, err
	}
	if strings.TrimSpace(o.Name) == "" {
		return domain.ShippingOption{}, domain.Invalid("name is required")
	}
	if o.Price.IsNegative() {
		return domain.ShippingOption{}, domain.Invalid("price must not be negative")
	}
	o.ID = uuid.NewString()
	o.StoreID = storeID
	o.Name = strings.TrimSpace(o.Name)
	o.Price = o.Price.Round(2)
	o.Active = true
	if err := repos.NewShippingRepo(s.DB).Create(ctx, o); err != nil {
		return domain.ShippingOption{}, err
	}
	return o, nil
}
