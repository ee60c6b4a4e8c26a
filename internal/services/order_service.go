package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"storelaunch/internal/domain"
	"storelaunch/internal/repos"
)

// OrderService tracks orders after checkout: fulfillment status, payment,
// tracking numbers and the read views for customers and stores.
type OrderService struct {
	DB     *sqlx.DB
	Access *AccessService
}

func NewOrderService(db *sqlx.DB, access *AccessService) *OrderService {
	return &OrderService{DB: db, Access: access}
}

type StoreOrderDetail struct {
	repos.StoreOrder
	Items []domain.OrderItem `json:"items"`
}

func (s *OrderService) ListMine(ctx context.Context, customerID string) ([]domain.Order, error) {
	return repos.NewOrderRepo(s.DB).ListForCustomer(ctx, customerID)
}

// GetMine returns one of the customer's orders. Orders of other customers
// are reported as not found.
func (s *OrderService) GetMine(ctx context.Context, customerID, orderID string) (*domain.Receipt, error) {
	orders := repos.NewOrderRepo(s.DB)
	o, err := orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, domain.Missing("order")
	}
	items, err := orders.Items(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &domain.Receipt{Order: o, Items: items}, nil
}

func (s *OrderService) ListForStore(ctx context.Context, u *domain.User, storeID string) ([]repos.StoreOrder, error) {
	if _, err := s.Access.RequireManager(ctx, u, storeID); err != nil {
		return nil, err
	}
	return repos.NewOrderRepo(s.DB).ListForStore(ctx, storeID)
}

func (s *OrderService) GetForStore(ctx context.Context, u *domain.User, storeID, orderID string) (*StoreOrderDetail, error) {
	if _, err := s.Access.RequireManager(ctx, u, storeID); err != nil {
		return nil, err
	}
	return s.storeDetail(ctx, s.DB, storeID, orderID)
}

func (s *OrderService) storeDetail(ctx context.Context, q sqlx.ExtContext, storeID, orderID string) (*StoreOrderDetail, error) {
	orders := repos.NewOrderRepo(q)
	o, err := orders.GetForStore(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	items, err := orders.Items(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &StoreOrderDetail{StoreOrder: o, Items: items}, nil
}

type OrderUpdate struct {
	Status         *string
	TrackingNumber *string
}

// Update applies a store-side change. A status change must follow the
// fulfillment graph; cancelling puts the items back in stock.
func (s *OrderService) Update(ctx context.Context, u *domain.User, storeID, orderID string, upd OrderUpdate) (*StoreOrderDetail, error) {
	if _, err := s.Access.RequireManager(ctx, u, storeID); err != nil {
		return nil, err
	}
	var next domain.OrderStatus
	if upd.Status != nil {
		st, ok := domain.ParseOrderStatus(strings.TrimSpace(*upd.Status))
		if !ok {
			return nil, domain.Invalid("unknown status %q", *upd.Status)
		}
		next = st
	}
	var detail *StoreOrderDetail
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := repos.NewOrderRepo(tx)
		cur, err := orders.GetForStore(ctx, storeID, orderID)
		if err != nil {
			return err
		}
		if next != "" && next != cur.Status {
			if !cur.Status.CanTransitionTo(next) {
				return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, cur.Status, next)
			}
			if err := orders.SetStatus(ctx, orderID, next); err != nil {
				return err
			}
			if next == domain.StatusCancelled {
				if err := restock(ctx, tx, orderID); err != nil {
					return err
				}
			}
		}
		if upd.TrackingNumber != nil {
			if err := orders.SetTracking(ctx, orderID, strings.TrimSpace(*upd.TrackingNumber)); err != nil {
				return err
			}
		}
		detail, err = s.storeDetail(ctx, tx, storeID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func restock(ctx context.Context, tx *sqlx.Tx, orderID string) error {
	items, err := repos.NewOrderRepo(tx).Items(ctx, orderID)
	if err != nil {
		return err
	}
	products := repos.NewProductRepo(tx)
	for _, it := range items {
		if err := products.Restock(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// ConfirmPayment marks the customer's order paid. Paying twice is a no-op;
// a pending order moves on to confirmed.
func (s *OrderService) ConfirmPayment(ctx context.Context, customerID, orderID string) (*domain.Receipt, error) {
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := repos.NewOrderRepo(tx)
		o, err := orders.Get(ctx, orderID)
		if err != nil {
			return err
		}
		if o.CustomerID != customerID {
			return domain.Missing("order")
		}
		if o.PaymentStatus == domain.PaymentPaid {
			return nil
		}
		if o.Status == domain.StatusCancelled {
			return fmt.Errorf("%w: order is cancelled", domain.ErrInvalidTransition)
		}
		next := o.Status
		if next == domain.StatusPending {
			next = domain.StatusConfirmed
		}
		return orders.MarkPaid(ctx, orderID, next)
	})
	if err != nil {
		return nil, err
	}
	return s.GetMine(ctx, customerID, orderID)
}
