package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"storelaunch/internal/domain"
	applog "storelaunch/internal/log"
	"storelaunch/internal/repos"
)

const defaultCurrency = "SAR"

type CheckoutRequest struct {
	ShippingAddress string
	ShippingMethod  string
}

// CheckoutService turns a cart into an order. Each attempt runs in a single
// immediate transaction; lock contention and guarded-update misses are
// retried with exponential backoff.
type CheckoutService struct {
	DB       *sqlx.DB
	Shipping ShippingCalculator
	Tax      TaxCalculator

	MaxAttempts    uint
	InitialBackoff time.Duration
	Tracer         trace.Tracer
}

func NewCheckoutService(db *sqlx.DB, shipping ShippingCalculator, tax TaxCalculator, maxAttempts int, initial time.Duration) *CheckoutService {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	if initial <= 0 {
		initial = 50 * time.Millisecond
	}
	if shipping == nil {
		shipping = StoreShipping{}
	}
	if tax == nil {
		tax = PercentTax{Rate: decimal.Zero}
	}
	return &CheckoutService{
		DB:             db,
		Shipping:       shipping,
		Tax:            tax,
		MaxAttempts:    uint(maxAttempts),
		InitialBackoff: initial,
		Tracer:         otel.Tracer("storelaunch/services"),
	}
}

// isDomainErr reports failures that a retry cannot change.
func isDomainErr(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound, domain.ErrForbidden, domain.ErrUnauthorized, domain.ErrInvalidInput,
		domain.ErrInsufficientStock, domain.ErrEmptyCart, domain.ErrOutOfStock,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *CheckoutService) Checkout(ctx context.Context, storeID string, id domain.Identity, req CheckoutRequest) (*domain.Receipt, error) {
	ctx, span := s.Tracer.Start(ctx, "checkout", trace.WithAttributes(attribute.String("store.id", storeID)))
	defer span.End()

	receipt, attempts, err := s.checkout(ctx, storeID, id, req)
	span.SetAttributes(attribute.Int("checkout.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", receipt.Order.ID),
		attribute.String("order.total", receipt.Order.Total.StringFixed(2)),
	)
	span.SetStatus(codes.Ok, "")
	return receipt, nil
}

func (s *CheckoutService) checkout(ctx context.Context, storeID string, id domain.Identity, req CheckoutRequest) (*domain.Receipt, int, error) {
	if !id.IsAuthenticated() {
		return nil, 0, fmt.Errorf("checkout requires an account: %w", domain.ErrForbidden)
	}
	req.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
	req.ShippingMethod = strings.TrimSpace(req.ShippingMethod)
	if req.ShippingAddress == "" {
		return nil, 0, domain.Invalid("shipping address is required")
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.InitialBackoff
	b.MaxInterval = 20 * s.InitialBackoff

	attempts := 0
	op := func() (*domain.Receipt, error) {
		attempts++
		r, err := s.attempt(ctx, storeID, id.UserID, req)
		switch {
		case err == nil:
			return r, nil
		case isDomainErr(err):
			return nil, backoff.Permanent(err)
		case ctx.Err() != nil:
			return nil, backoff.Permanent(ctx.Err())
		case repos.IsConflict(err):
			return nil, fmt.Errorf("%w: %v", domain.ErrCheckoutFailed, err)
		default:
			return nil, backoff.Permanent(fmt.Errorf("%w: %v", domain.ErrCheckoutFailed, err))
		}
	}
	r, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(s.MaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			applog.L().Warn("checkout.retry",
				zap.String("store_id", storeID), zap.Int("attempt", attempts),
				zap.Duration("next", next), zap.Error(err))
		}),
	)
	return r, attempts, err
}

// attempt is one all-or-nothing conversion of the customer's cart.
func (s *CheckoutService) attempt(ctx context.Context, storeID, customerID string, req CheckoutRequest) (*domain.Receipt, error) {
	var receipt *domain.Receipt
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if _, err := openStore(ctx, tx, storeID); err != nil {
			return err
		}
		carts := repos.NewCartRepo(tx)
		c, err := carts.Find(ctx, storeID, domain.Authenticated(customerID))
		if err != nil {
			return err
		}
		lines, err := carts.Lines(ctx, c.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		subtotal := decimal.Zero
		for _, l := range lines {
			available := l.StockQuantity
			if !l.Active {
				available = 0
			}
			if l.Quantity > available {
				return &domain.InsufficientStockError{
					ProductID:   l.ProductID,
					ProductName: productName(l),
					Requested:   l.Quantity,
					Available:   available,
				}
			}
			subtotal = subtotal.Add(l.LineTotal())
		}
		subtotal = subtotal.Round(2)
		shipping, err := s.Shipping.Quote(ctx, tx, storeID, req.ShippingMethod, subtotal)
		if err != nil {
			return err
		}
		shipping = shipping.Round(2)
		tax := s.Tax.Tax(subtotal).Round(2)

		orderID := uuid.NewString()
		orders := repos.NewOrderRepo(tx)
		if err := orders.Create(ctx, domain.Order{
			ID:              orderID,
			StoreID:         storeID,
			CustomerID:      customerID,
			Status:          domain.StatusPending,
			Subtotal:        subtotal,
			ShippingCost:    shipping,
			Tax:             tax,
			Total:           subtotal.Add(shipping).Add(tax).Round(2),
			Currency:        defaultCurrency,
			ShippingAddress: req.ShippingAddress,
			ShippingMethod:  req.ShippingMethod,
			PaymentStatus:   domain.PaymentPending,
		}); err != nil {
			return err
		}
		products := repos.NewProductRepo(tx)
		for _, l := range lines {
			if err := orders.InsertItem(ctx, domain.OrderItem{
				ID:          uuid.NewString(),
				OrderID:     orderID,
				ProductID:   l.ProductID,
				ProductName: productName(l),
				Quantity:    l.Quantity,
				UnitPrice:   l.Price,
			}); err != nil {
				return err
			}
			if err := products.Decrement(ctx, l.ProductID, l.Quantity); err != nil {
				return err
			}
		}
		if err := carts.Clear(ctx, c.ID); err != nil {
			return err
		}

		o, err := orders.Get(ctx, orderID)
		if err != nil {
			return err
		}
		items, err := orders.Items(ctx, orderID)
		if err != nil {
			return err
		}
		receipt = &domain.Receipt{Order: o, Items: items}
		return nil
	})
	return receipt, err
}

func productName(l domain.CartLine) string {
	if l.NameEn != "" {
		return l.NameEn
	}
	return l.NameAr
}
