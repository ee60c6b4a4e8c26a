package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"storelaunch/internal/domain"
)

const storeCols = `id, owner_id, name, slug, description, logo_url, theme, theme_colors,
  subscription_plan, is_active, is_suspended, created_at, updated_at`

type StoreRepo struct{ q sqlx.ExtContext }

func NewStoreRepo(q sqlx.ExtContext) *StoreRepo { return &StoreRepo{q: q} }

// StoreWithOwner is the admin listing row.
type StoreWithOwner struct {
	domain.Store
	OwnerEmail string `db:"owner_email" json:"ownerEmail"`
	OwnerName  string `db:"owner_name" json:"ownerName"`
}

// StorePatch holds optional settings; nil fields are left as they are.
type StorePatch struct {
	Name        *string
	Description *string
	LogoURL     *string
	Theme       *string
	ThemeColors *string
}

func noRows(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Missing(entity)
	}
	return err
}

func (r *StoreRepo) ByID(ctx context.Context, id string) (domain.Store, error) {
	var s domain.Store
	err := sqlx.GetContext(ctx, r.q, &s, `SELECT `+storeCols+` FROM stores WHERE id=?`, id)
	return s, noRows(err, "store")
}

func (r *StoreRepo) BySlug(ctx context.Context, slug string) (domain.Store, error) {
	var s domain.Store
	err := sqlx.GetContext(ctx, r.q, &s, `SELECT `+storeCols+` FROM stores WHERE slug=?`, slug)
	return s, noRows(err, "store")
}

func (r *StoreRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Store, error) {
	out := []domain.Store{}
	err := sqlx.SelectContext(ctx, r.q, &out,
		`SELECT `+storeCols+` FROM stores WHERE owner_id=? ORDER BY created_at`, ownerID)
	return out, err
}

func (r *StoreRepo) ListWithOwners(ctx context.Context) ([]StoreWithOwner, error) {
	out := []StoreWithOwner{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
	  SELECT s.id, s.owner_id, s.name, s.slug, s.description, s.logo_url, s.theme, s.theme_colors,
	         s.subscription_plan, s.is_active, s.is_suspended, s.created_at, s.updated_at,
	         u.email AS owner_email, u.full_name AS owner_name
	  FROM stores s JOIN users u ON u.id = s.owner_id
	  ORDER BY s.created_at DESC`)
	return out, err
}

func (r *StoreRepo) Create(ctx context.Context, s domain.Store) error {
	_, err := r.q.ExecContext(ctx, `
	  INSERT INTO stores(id, owner_id, name, slug, description, subscription_plan)
	  VALUES(?,?,?,?,?,?)`, s.ID, s.OwnerID, s.Name, s.Slug, s.Description, s.SubscriptionPlan)
	return err
}

func (r *StoreRepo) Update(ctx context.Context, id string, p StorePatch) error {
	_, err := r.q.ExecContext(ctx, `
	  UPDATE stores SET
	    name         = COALESCE(?, name),
	    description  = COALESCE(?, description),
	    logo_url     = COALESCE(?, logo_url),
	    theme        = COALESCE(?, theme),
	    theme_colors = COALESCE(?, theme_colors),
	    updated_at   = datetime('now')
	  WHERE id=?`, p.Name, p.Description, p.LogoURL, p.Theme, p.ThemeColors, id)
	return err
}

func (r *StoreRepo) SetSuspended(ctx context.Context, id string, suspended bool) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE stores SET is_suspended=?, updated_at=datetime('now') WHERE id=?`, suspended, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "store")
}

func (r *StoreRepo) SetPlan(ctx context.Context, id, planID string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE stores SET subscription_plan=?, updated_at=datetime('now') WHERE id=?`, planID, id)
	return err
}

func (r *StoreRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM stores`)
	return n, err
}

func mustAffect(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.Missing(entity)
	}
	return nil
}
