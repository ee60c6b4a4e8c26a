package services

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storelaunch/internal/domain"
	"storelaunch/internal/repos"
)

type CartService struct {
	DB *sqlx.DB
}

func NewCartService(db *sqlx.DB) *CartService { return &CartService{DB: db} }

type CartView struct {
	Cart     *domain.Cart      `json:"cart"`
	Items    []domain.CartLine `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
}

// openStore returns the store only if it is active and not suspended.
func openStore(ctx context.Context, q sqlx.ExtContext, storeID string) (domain.Store, error) {
	st, err := repos.NewStoreRepo(q).ByID(ctx, storeID)
	if errors.Is(err, domain.ErrNotFound) {
		return st, domain.ErrStoreUnavailable
	}
	if err != nil {
		return st, err
	}
	if !st.Open() {
		return st, domain.ErrStoreUnavailable
	}
	return st, nil
}

// GetOrCreate returns the identity's cart in the store, creating it lazily.
func (s *CartService) GetOrCreate(ctx context.Context, storeID string, id domain.Identity) (domain.Cart, error) {
	if _, err := openStore(ctx, s.DB, storeID); err != nil {
		return domain.Cart{}, err
	}
	return repos.NewCartRepo(s.DB).GetOrCreate(ctx, storeID, id)
}

// View shows the cart with live product data, creating the cart on first
// visit. A caller with neither token nor session gets an empty view.
func (s *CartService) View(ctx context.Context, storeID string, id domain.Identity) (CartView, error) {
	v := CartView{Items: []domain.CartLine{}, Subtotal: decimal.Zero}
	if _, err := openStore(ctx, s.DB, storeID); err != nil {
		return v, err
	}
	if id.IsZero() {
		return v, nil
	}
	carts := repos.NewCartRepo(s.DB)
	c, err := carts.GetOrCreate(ctx, storeID, id)
	if err != nil {
		return v, err
	}
	lines, err := carts.Lines(ctx, c.ID)
	if err != nil {
		return v, err
	}
	v.Cart = &c
	for _, l := range lines {
		if !l.Active {
			continue
		}
		v.Items = append(v.Items, l)
		v.Subtotal = v.Subtotal.Add(l.LineTotal())
	}
	return v, nil
}

// AddItem puts quantity units of the product in the cart, merging with an
// existing line. The combined quantity may not exceed current stock.
func (s *CartService) AddItem(ctx context.Context, storeID string, id domain.Identity, productID string, quantity int) (CartView, error) {
	if quantity < 1 {
		return CartView{}, domain.Invalid("quantity must be at least 1")
	}
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if _, err := openStore(ctx, tx, storeID); err != nil {
			return err
		}
		p, err := repos.NewProductRepo(tx).Get(ctx, productID)
		if err != nil {
			return err
		}
		if !p.Active || p.StoreID != storeID {
			return domain.Missing("product")
		}
		carts := repos.NewCartRepo(tx)
		c, err := carts.GetOrCreate(ctx, storeID, id)
		if err != nil {
			return err
		}
		have, err := carts.QuantityOf(ctx, c.ID, productID)
		if err != nil {
			return err
		}
		if have+quantity > p.StockQuantity {
			return domain.ErrOutOfStock
		}
		return carts.AddQuantity(ctx, c.ID, productID, quantity)
	})
	if err != nil {
		return CartView{}, err
	}
	return s.View(ctx, storeID, id)
}

// SetItemQuantity replaces a line's quantity; zero removes the line.
func (s *CartService) SetItemQuantity(ctx context.Context, storeID string, id domain.Identity, itemID string, quantity int) (CartView, error) {
	if quantity < 0 {
		return CartView{}, domain.Invalid("quantity must not be negative")
	}
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		carts := repos.NewCartRepo(tx)
		c, err := carts.Find(ctx, storeID, id)
		if err != nil {
			return err
		}
		line, err := carts.Line(ctx, c.ID, itemID)
		if err != nil {
			return err
		}
		if quantity == 0 {
			return carts.DeleteLine(ctx, c.ID, itemID)
		}
		if quantity > line.StockQuantity {
			return domain.ErrOutOfStock
		}
		return carts.SetQuantity(ctx, c.ID, itemID, quantity)
	})
	if err != nil {
		return CartView{}, err
	}
	return s.View(ctx, storeID, id)
}

func (s *CartService) RemoveItem(ctx context.Context, storeID string, id domain.Identity, itemID string) error {
	return repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		carts := repos.NewCartRepo(tx)
		c, err := carts.Find(ctx, storeID, id)
		if err != nil {
			return err
		}
		return carts.DeleteLine(ctx, c.ID, itemID)
	})
}
