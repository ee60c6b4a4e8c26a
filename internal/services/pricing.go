package services

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storelaunch/internal/domain"
	"storelaunch/internal/repos"
)

// ShippingCalculator prices delivery for a checkout. q is the checkout's
// transaction so quotes see the same snapshot as the stock checks.
type ShippingCalculator interface {
	Quote(ctx context.Context, q sqlx.ExtContext, storeID, method string, subtotal decimal.Decimal) (decimal.Decimal, error)
}

// TaxCalculator computes tax on an order subtotal.
type TaxCalculator interface {
	Tax(subtotal decimal.Decimal) decimal.Decimal
}

// StoreShipping charges the price of the store's active shipping option
// whose name matches the method. No method, or no such option, is free.
type StoreShipping struct{}

func (StoreShipping) Quote(ctx context.Context, q sqlx.ExtContext, storeID, method string, _ decimal.Decimal) (decimal.Decimal, error) {
	if method == "" {
		return decimal.Zero, nil
	}
	opt, err := repos.NewShippingRepo(q).ActiveByName(ctx, storeID, method)
	if errors.Is(err, domain.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return opt.Price, nil
}

// PercentTax applies Rate (0.15 = 15%) to the subtotal.
type PercentTax struct{ Rate decimal.Decimal }

func (p PercentTax) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(p.Rate).Round(2)
}
