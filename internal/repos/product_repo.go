package repos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storelaunch/internal/domain"
)

const productCols = `id, store_id, COALESCE(category_id,'') AS category_id, name_en, name_ar,
  description_en, description_ar, price, compare_at_price, sku, stock_quantity,
  image_url, is_active, created_at, updated_at`

type ProductRepo struct{ q sqlx.ExtContext }

func NewProductRepo(q sqlx.ExtContext) *ProductRepo { return &ProductRepo{q: q} }

// ProductPatch holds optional product fields; nil fields are left untouched.
type ProductPatch struct {
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

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.q, &p, `SELECT `+productCols+` FROM products WHERE id=?`, id)
	return p, noRows(err, "product")
}

// Search lists the active products of a store. q matches either localized
// name, case-insensitively.
func (r *ProductRepo) Search(ctx context.Context, storeID, q, categoryID string) ([]domain.Product, error) {
	where := `store_id = ? AND is_active = 1`
	args := []any{storeID}
	if q = strings.ToLower(strings.TrimSpace(q)); q != "" {
		where += ` AND (LOWER(name_en) LIKE ? OR name_ar LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	if categoryID != "" {
		where += ` AND category_id = ?`
		args = append(args, categoryID)
	}
	out := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.q, &out,
		`SELECT `+productCols+` FROM products WHERE `+where+` ORDER BY created_at DESC`, args...)
	return out, err
}

// ListForStore returns every product of a store, inactive ones included.
func (r *ProductRepo) ListForStore(ctx context.Context, storeID string) ([]domain.Product, error) {
	out := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.q, &out,
		`SELECT `+productCols+` FROM products WHERE store_id=? ORDER BY created_at DESC`, storeID)
	return out, err
}

func (r *ProductRepo) CountForStore(ctx context.Context, storeID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n,
		`SELECT COUNT(*) FROM products WHERE store_id=? AND is_active=1`, storeID)
	return n, err
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) error {
	_, err := r.q.ExecContext(ctx, `
	  INSERT INTO products(id, store_id, category_id, name_en, name_ar, description_en, description_ar,
	                       price, compare_at_price, sku, stock_quantity, image_url, is_active)
	  VALUES(?,?,NULLIF(?,''),?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.StoreID, p.CategoryID, p.NameEn, p.NameAr, p.DescriptionEn, p.DescriptionAr,
		p.Price.StringFixed(2), p.CompareAtPrice.StringFixed(2), p.SKU, p.StockQuantity, p.ImageURL, p.Active)
	return err
}

func (r *ProductRepo) Update(ctx context.Context, id string, p ProductPatch) error {
	var price, compare *string
	if p.Price != nil {
		s := p.Price.StringFixed(2)
		price = &s
	}
	if p.CompareAtPrice != nil {
		s := p.CompareAtPrice.StringFixed(2)
		compare = &s
	}
	res, err := r.q.ExecContext(ctx, `
	  UPDATE products SET
	    category_id      = CASE WHEN ? IS NULL THEN category_id ELSE NULLIF(?, '') END,
	    name_en          = COALESCE(?, name_en),
	    name_ar          = COALESCE(?, name_ar),
	    description_en   = COALESCE(?, description_en),
	    description_ar   = COALESCE(?, description_ar),
	    price            = COALESCE(?, price),
	    compare_at_price = COALESCE(?, compare_at_price),
	    sku              = COALESCE(?, sku),
	    stock_quantity   = COALESCE(?, stock_quantity),
	    image_url        = COALESCE(?, image_url),
	    is_active        = COALESCE(?, is_active),
	    updated_at       = datetime('now')
	  WHERE id=?`,
		p.CategoryID, p.CategoryID, p.NameEn, p.NameAr, p.DescriptionEn, p.DescriptionAr,
		price, compare, p.SKU, p.StockQuantity, p.ImageURL, p.Active, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "product")
}

func (r *ProductRepo) Deactivate(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE products SET is_active=0, updated_at=datetime('now') WHERE id=?`, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "product")
}

// Decrement subtracts qty from the product's stock only if enough remains.
// A miss means another writer got there first and returns ErrConflict.
func (r *ProductRepo) Decrement(ctx context.Context, id string, qty int) error {
	res, err := r.q.ExecContext(ctx, `
	  UPDATE products
	  SET stock_quantity = stock_quantity - ?, updated_at = datetime('now')
	  WHERE id = ? AND stock_quantity >= ?`, qty, id, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("decrement %s by %d: %w", id, qty, ErrConflict)
	}
	return nil
}

// Restock puts qty units back, e.g. when an order is cancelled.
func (r *ProductRepo) Restock(ctx context.Context, id string, qty int) error {
	_, err := r.q.ExecContext(ctx, `
	  UPDATE products
	  SET stock_quantity = stock_quantity + ?, updated_at = datetime('now')
	  WHERE id = ?`, qty, id)
	return err
}
