package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storelaunch/internal/domain"
	"storelaunch/internal/services"
)

func placeOrder(t *testing.T, s *shop, qty int) (*domain.Receipt, domain.Product) {
	t.Helper()
	p := s.product(t, "Kunafa", "20.00", 10)
	s.fill(t, s.customer.ID, p.ID, qty)
	r, err := newCheckout(s).Checkout(context.Background(), s.store.ID, domain.Authenticated(s.customer.ID), req("Jeddah"))
	require.NoError(t, err)
	return r, p
}

func newOrders(s *shop) *services.OrderService {
	return services.NewOrderService(s.db, services.NewAccessService(s.db))
}

func strp(s string) *string { return &s }

func TestOrders_CustomerSeesOnlyOwnOrders(t *testing.T) {
	s := memShop(t)
	svc := newOrders(s)
	ctx := context.Background()
	r, _ := placeOrder(t, s, 1)

	mine, err := svc.ListMine(ctx, s.customer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, s.store.Name, mine[0].StoreName)

	got, err := svc.GetMine(ctx, s.customer.ID, r.Order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	_, err = svc.GetMine(ctx, s.customer2.ID, r.Order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrders_StoreAccessRequiresManager(t *testing.T) {
	s := memShop(t)
	svc := newOrders(s)
	ctx := context.Background()
	r, _ := placeOrder(t, s, 1)

	_, err := svc.ListForStore(ctx, nil, s.store.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.ListForStore(ctx, s.customer, s.store.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	list, err := svc.ListForStore(ctx, s.owner, s.store.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, s.customer.Email, list[0].CustomerEmail)

	d, err := svc.GetForStore(ctx, s.admin, s.store.ID, r.Order.ID)
	require.NoError(t, err)
	assert.Len(t, d.Items, 1)
}

func TestOrders_StatusFollowsLifecycle(t *testing.T) {
	s := memShop(t)
	svc := newOrders(s)
	ctx := context.Background()
	r, _ := placeOrder(t, s, 1)

	_, err := svc.Update(ctx, s.owner, s.store.ID, r.Order.ID, services.OrderUpdate{Status: strp("shipped")})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	for _, st := range []string{"confirmed", "processing", "shipped", "delivered"} {
		d, err := svc.Update(ctx, s.owner, s.store.ID, r.Order.ID, services.OrderUpdate{Status: strp(st)})
		require.NoError(t, err, st)
		assert.Equal(t, domain.OrderStatus(st), d.Status)
	}

	_, err = svc.Update(ctx, s.owner, s.store.ID, r.Order.ID, services.OrderUpdate{Status: strp("cancelled")})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "delivered is terminal")

	_, err = svc.Update(ctx, s.owner, s.store.ID, r.Order.ID, services.OrderUpdate{Status: strp("lost")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOrders_TrackingAndSameStatus(t *testing.T) {
	s := memShop(t)
	svc := newOrders(s)
	ctx := context.Background()
	r, _ := placeOrder(t, s, 1)

	d, err := svc.Update(ctx, s.owner, s.store.ID, r.Order.ID, services.OrderUpdate{
		Status: strp("pending"), TrackingNumber: strp(" SMSA-123 "),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, d.Status)
	assert.Equal(t, "SMSA-123", d.TrackingNumber)

	_, err = svc.Update(ctx, s.customer2, s.store.ID, r.Order.ID, services.OrderUpdate{TrackingNumber: strp("x")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOrders_CancelRestoresStock(t *testing.T) {
	s := memShop(t)
	svc := newOrders(s)
	ctx := context.Background()
	r, p := placeOrder(t, s, 4)
	require.Equal(t, 6, s.stockOf(t, p.ID))

	d, err := svc.Update(ctx, s.owner, s.store.ID, r.Order.ID, services.OrderUpdate{Status: strp("cancelled")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, d.Status)
	assert.Equal(t, 10, s.stockOf(t, p.ID))

	_, err = svc.ConfirmPayment(ctx, s.customer.ID, r.Order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestOrders_ConfirmPaymentIsIdempotent(t *testing.T) {
	s := memShop(t)
	svc := newOrders(s)
	ctx := context.Background()
	r, _ := placeOrder(t, s, 1)

	got, err := svc.ConfirmPayment(ctx, s.customer.ID, r.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.Order.PaymentStatus)
	assert.Equal(t, domain.StatusConfirmed, got.Order.Status)

	again, err := svc.ConfirmPayment(ctx, s.customer.ID, r.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Order.Status, again.Order.Status)
	assert.Equal(t, got.Order.PaymentStatus, again.Order.PaymentStatus)

	_, err = svc.ConfirmPayment(ctx, s.customer2.ID, r.Order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
