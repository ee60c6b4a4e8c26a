package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storelaunch/internal/domain"
)

const orderCols = `o.id, o.store_id, o.customer_id, o.status, o.subtotal, o.shipping_cost, o.tax, o.total,
  o.currency, o.shipping_address, o.shipping_method, o.tracking_number, o.payment_status,
  o.created_at, o.updated_at, s.name AS store_name, s.slug AS store_slug`

const orderFrom = ` FROM orders o JOIN stores s ON s.id = o.store_id`

type OrderRepo struct{ q sqlx.ExtContext }

func NewOrderRepo(q sqlx.ExtContext) *OrderRepo { return &OrderRepo{q: q} }

// StoreOrder is an order as the store sees it, with the buyer's contact details.
type StoreOrder struct {
	domain.Order
	CustomerEmail string `db:"customer_email" json:"customerEmail"`
	CustomerName  string `db:"customer_name" json:"customerName"`
	CustomerPhone string `db:"customer_phone" json:"customerPhone"`
}

// Create inserts the order header.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order) error {
	_, err := r.q.ExecContext(ctx, `
	  INSERT INTO orders(id, store_id, customer_id, status, subtotal, shipping_cost, tax, total,
	                     currency, shipping_address, shipping_method, payment_status)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.ID, o.StoreID, o.CustomerID, o.Status, o.Subtotal.StringFixed(2), o.ShippingCost.StringFixed(2),
		o.Tax.StringFixed(2), o.Total.StringFixed(2), o.Currency, o.ShippingAddress, o.ShippingMethod, o.PaymentStatus)
	return err
}

// InsertItem writes one purchase-time line snapshot.
func (r *OrderRepo) InsertItem(ctx context.Context, it domain.OrderItem) error {
	_, err := r.q.ExecContext(ctx, `
	  INSERT INTO order_items(id, order_id, product_id, product_name, quantity, unit_price)
	  VALUES(?,?,?,?,?,?)`,
		it.ID, it.OrderID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice.StringFixed(2))
	return err
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	err := sqlx.GetContext(ctx, r.q, &o, `SELECT `+orderCols+orderFrom+` WHERE o.id=?`, id)
	return o, noRows(err, "order")
}

func (r *OrderRepo) GetForStore(ctx context.Context, storeID, id string) (StoreOrder, error) {
	var o StoreOrder
	err := sqlx.GetContext(ctx, r.q, &o, `
	  SELECT `+orderCols+`, u.email AS customer_email, u.full_name AS customer_name, u.phone AS customer_phone`+
		orderFrom+` JOIN users u ON u.id = o.customer_id
	  WHERE o.store_id=? AND o.id=?`, storeID, id)
	return o, noRows(err, "order")
}

func (r *OrderRepo) Items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	out := []domain.OrderItem{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
	  SELECT id, order_id, product_id, product_name, quantity, unit_price, created_at
	  FROM order_items WHERE order_id=? ORDER BY created_at, id`, orderID)
	return out, err
}

func (r *OrderRepo) ListForCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	out := []domain.Order{}
	err := sqlx.SelectContext(ctx, r.q, &out,
		`SELECT `+orderCols+orderFrom+` WHERE o.customer_id=? ORDER BY o.created_at DESC, o.id`, customerID)
	return out, err
}

func (r *OrderRepo) ListForStore(ctx context.Context, storeID string) ([]StoreOrder, error) {
	out := []StoreOrder{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
	  SELECT `+orderCols+`, u.email AS customer_email, u.full_name AS customer_name, u.phone AS customer_phone`+
		orderFrom+` JOIN users u ON u.id = o.customer_id
	  WHERE o.store_id=? ORDER BY o.created_at DESC, o.id`, storeID)
	return out, err
}

func (r *OrderRepo) SetStatus(ctx context.Context, id string, st domain.OrderStatus) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE orders SET status=?, updated_at=datetime('now') WHERE id=?`, st, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "order")
}

func (r *OrderRepo) SetTracking(ctx context.Context, id, tracking string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE orders SET tracking_number=?, updated_at=datetime('now') WHERE id=?`, tracking, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "order")
}

func (r *OrderRepo) MarkPaid(ctx context.Context, id string, st domain.OrderStatus) error {
	res, err := r.q.ExecContext(ctx, `
	  UPDATE orders SET payment_status='paid', status=?, updated_at=datetime('now') WHERE id=?`, st, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "order")
}

// PaidTotals returns the count and summed total of paid orders.
func (r *OrderRepo) PaidTotals(ctx context.Context) (int, decimal.Decimal, error) {
	var totals []decimal.Decimal
	if err := sqlx.SelectContext(ctx, r.q, &totals,
		`SELECT total FROM orders WHERE payment_status='paid'`); err != nil {
		return 0, decimal.Zero, err
	}
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t)
	}
	return len(totals), sum, nil
}
