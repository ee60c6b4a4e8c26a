package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storelaunch/internal/domain"
)

const cartCols = `id, store_id, COALESCE(customer_id,'') AS customer_id, COALESCE(session_id,'') AS session_id,
  created_at, updated_at`

const lineSelect = `
  SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity,
         p.name_en, p.name_ar, p.price, p.image_url, p.stock_quantity, p.is_active
  FROM cart_items ci JOIN products p ON p.id = ci.product_id`

type CartRepo struct{ q sqlx.ExtContext }

func NewCartRepo(q sqlx.ExtContext) *CartRepo { return &CartRepo{q: q} }

func ownerColumn(id domain.Identity) (string, string) {
	if id.IsAuthenticated() {
		return "customer_id", id.UserID
	}
	return "session_id", id.SessionToken
}

// Find returns the identity's cart in the store.
func (r *CartRepo) Find(ctx context.Context, storeID string, id domain.Identity) (domain.Cart, error) {
	col, val := ownerColumn(id)
	var c domain.Cart
	err := sqlx.GetContext(ctx, r.q, &c,
		`SELECT `+cartCols+` FROM carts WHERE store_id=? AND `+col+`=?`, storeID, val)
	return c, noRows(err, "cart")
}

// GetOrCreate returns the identity's cart, creating it on first use.
// Concurrent creators converge on the same row through the partial unique
// indexes on (store_id, customer_id) and (store_id, session_id).
func (r *CartRepo) GetOrCreate(ctx context.Context, storeID string, id domain.Identity) (domain.Cart, error) {
	if id.IsZero() {
		return domain.Cart{}, domain.ErrUnauthorized
	}
	c, err := r.Find(ctx, storeID, id)
	if err == nil || !errors.Is(err, domain.ErrNotFound) {
		return c, err
	}
	var customer, session any
	if id.IsAuthenticated() {
		customer = id.UserID
	} else {
		session = id.SessionToken
	}
	if _, err := r.q.ExecContext(ctx, `
	  INSERT INTO carts(id, store_id, customer_id, session_id) VALUES(?,?,?,?)
	  ON CONFLICT DO NOTHING`, uuid.NewString(), storeID, customer, session); err != nil {
		return domain.Cart{}, err
	}
	return r.Find(ctx, storeID, id)
}

// Lines returns every line of the cart joined with its live product row.
func (r *CartRepo) Lines(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	out := []domain.CartLine{}
	err := sqlx.SelectContext(ctx, r.q, &out, lineSelect+` WHERE ci.cart_id=? ORDER BY ci.created_at, ci.id`, cartID)
	return out, err
}

func (r *CartRepo) Line(ctx context.Context, cartID, itemID string) (domain.CartLine, error) {
	var l domain.CartLine
	err := sqlx.GetContext(ctx, r.q, &l, lineSelect+` WHERE ci.cart_id=? AND ci.id=?`, cartID, itemID)
	return l, noRows(err, "cart item")
}

// QuantityOf returns how many units of the product the cart already holds.
func (r *CartRepo) QuantityOf(ctx context.Context, cartID, productID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n,
		`SELECT quantity FROM cart_items WHERE cart_id=? AND product_id=?`, cartID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// AddQuantity inserts the line or increments the existing one.
func (r *CartRepo) AddQuantity(ctx context.Context, cartID, productID string, qty int) error {
	_, err := r.q.ExecContext(ctx, `
	  INSERT INTO cart_items(id, cart_id, product_id, quantity) VALUES(?,?,?,?)
	  ON CONFLICT(cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + excluded.quantity`,
		uuid.NewString(), cartID, productID, qty)
	if err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *CartRepo) SetQuantity(ctx context.Context, cartID, itemID string, qty int) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE cart_items SET quantity=? WHERE cart_id=? AND id=?`, qty, cartID, itemID)
	if err != nil {
		return err
	}
	if err := mustAffect(res, "cart item"); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *CartRepo) DeleteLine(ctx context.Context, cartID, itemID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id=? AND id=?`, cartID, itemID)
	if err != nil {
		return err
	}
	if err := mustAffect(res, "cart item"); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id=?`, cartID); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *CartRepo) touch(ctx context.Context, cartID string) error {
	_, err := r.q.ExecContext(ctx, `UPDATE carts SET updated_at=datetime('now') WHERE id=?`, cartID)
	return err
}

// AdoptSession moves every anonymous cart of the session over to the user.
// Where the user already has a cart in that store the lines are merged and
// the anonymous cart is dropped. Call inside a transaction.
func (r *CartRepo) AdoptSession(ctx context.Context, sessionToken, userID string) error {
	var anon []domain.Cart
	if err := sqlx.SelectContext(ctx, r.q, &anon,
		`SELECT `+cartCols+` FROM carts WHERE session_id=?`, sessionToken); err != nil {
		return err
	}
	for _, c := range anon {
		own, err := r.Find(ctx, c.StoreID, domain.Authenticated(userID))
		if errors.Is(err, domain.ErrNotFound) {
			if _, err := r.q.ExecContext(ctx, `
			  UPDATE carts SET customer_id=?, session_id=NULL, updated_at=datetime('now') WHERE id=?`,
				userID, c.ID); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		if _, err := r.q.ExecContext(ctx, `
		  INSERT INTO cart_items(id, cart_id, product_id, quantity)
		  SELECT lower(hex(randomblob(16))), ?, product_id, quantity FROM cart_items WHERE cart_id=?
		  ON CONFLICT(cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + excluded.quantity`,
			own.ID, c.ID); err != nil {
			return err
		}
		if _, err := r.q.ExecContext(ctx, `DELETE FROM carts WHERE id=?`, c.ID); err != nil {
			return err
		}
	}
	return nil
}
