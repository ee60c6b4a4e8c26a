package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storelaunch/internal/domain"
)

const categoryCols = `id, store_id, name_en, name_ar, COALESCE(parent_id,'') AS parent_id, created_at`

type CategoryRepo struct{ q sqlx.ExtContext }

func NewCategoryRepo(q sqlx.ExtContext) *CategoryRepo { return &CategoryRepo{q: q} }

func (r *CategoryRepo) ListForStore(ctx context.Context, storeID string) ([]domain.Category, error) {
	out := []domain.Category{}
	err := sqlx.SelectContext(ctx, r.q, &out,
		`SELECT `+categoryCols+` FROM categories WHERE store_id=? ORDER BY name_en`, storeID)
	return out, err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := sqlx.GetContext(ctx, r.q, &c, `SELECT `+categoryCols+` FROM categories WHERE id=?`, id)
	return c, noRows(err, "category")
}

func (r *CategoryRepo) Create(ctx context.Context, c domain.Category) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO categories(id, store_id, name_en, name_ar, parent_id) VALUES(?,?,?,?,NULLIF(?,''))`,
		c.ID, c.StoreID, c.NameEn, c.NameAr, c.ParentID)
	return err
}
