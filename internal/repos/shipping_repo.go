package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storelaunch/internal/domain"
)

const shippingCols = `id, store_id, name, regions, price, is_active, created_at`

type ShippingRepo struct{ q sqlx.ExtContext }

func NewShippingRepo(q sqlx.ExtContext) *ShippingRepo { return &ShippingRepo{q: q} }

func (r *ShippingRepo) ListForStore(ctx context.Context, storeID string) ([]domain.ShippingOption, error) {
	out := []domain.ShippingOption{}
	err := sqlx.SelectContext(ctx, r.q, &out,
		`SELECT `+shippingCols+` FROM shipping_options WHERE store_id=? ORDER BY created_at`, storeID)
	return out, err
}

// ActiveByName finds the store's active option for a checkout shipping method.
func (r *ShippingRepo) ActiveByName(ctx context.Context, storeID, name string) (domain.ShippingOption, error) {
	var o domain.ShippingOption
	err := sqlx.GetContext(ctx, r.q, &o, `
	  SELECT `+shippingCols+` FROM shipping_options
	  WHERE store_id=? AND LOWER(name)=LOWER(?) AND is_active=1
	  LIMIT 1`, storeID, name)
	return o, noRows(err, "shipping option")
}

func (r *ShippingRepo) Create(ctx context.Context, o domain.ShippingOption) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO shipping_options(id, store_id, name, regions, price, is_active) VALUES(?,?,?,?,?,?)`,
		o.ID, o.StoreID, o.Name, o.Regions, o.Price.StringFixed(2), o.Active)
	return err
}
