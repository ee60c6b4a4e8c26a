package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storelaunch/internal/domain"
)

type SubscriptionRepo struct{ q sqlx.ExtContext }

func NewSubscriptionRepo(q sqlx.ExtContext) *SubscriptionRepo { return &SubscriptionRepo{q: q} }

func (r *SubscriptionRepo) Plans(ctx context.Context) ([]domain.Plan, error) {
	out := []domain.Plan{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
	  SELECT id, name, price_monthly, max_products, custom_domain
	  FROM subscription_plans ORDER BY CAST(price_monthly AS REAL)`)
	return out, err
}

func (r *SubscriptionRepo) Plan(ctx context.Context, id string) (domain.Plan, error) {
	var p domain.Plan
	err := sqlx.GetContext(ctx, r.q, &p, `
	  SELECT id, name, price_monthly, max_products, custom_domain
	  FROM subscription_plans WHERE id=?`, id)
	return p, noRows(err, "plan")
}

func (r *SubscriptionRepo) Active(ctx context.Context, storeID string) (domain.Subscription, error) {
	var s domain.Subscription
	err := sqlx.GetContext(ctx, r.q, &s, `
	  SELECT id, store_id, plan_id, status, current_period_end, created_at
	  FROM store_subscriptions WHERE store_id=? AND status='active'`, storeID)
	return s, noRows(err, "subscription")
}

// Replace ends the store's active subscription and starts a new one.
// Call inside a transaction.
func (r *SubscriptionRepo) Replace(ctx context.Context, storeID, planID string, periodEnd time.Time) (domain.Subscription, error) {
	if _, err := r.q.ExecContext(ctx,
		`UPDATE store_subscriptions SET status='replaced' WHERE store_id=? AND status='active'`, storeID); err != nil {
		return domain.Subscription{}, err
	}
	id := uuid.NewString()
	if _, err := r.q.ExecContext(ctx, `
	  INSERT INTO store_subscriptions(id, store_id, plan_id, status, current_period_end)
	  VALUES(?,?,?,'active',?)`, id, storeID, planID, periodEnd.UTC().Format(sqliteTime)); err != nil {
		return domain.Subscription{}, err
	}
	return r.Active(ctx, storeID)
}
