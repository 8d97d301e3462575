package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/repo"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

func TestOrderService_CheckoutTotals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		threshold int64
		shipping  string
		total     string
	}{
		{name: "free shipping at or above threshold", threshold: 200, shipping: "0", total: "250"},
		{name: "flat fee below threshold", threshold: 500, shipping: "50", total: "300"},
		{name: "threshold equal to subtotal", threshold: 250, shipping: "0", total: "250"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.orders.FreeShippingThreshold = decimal.NewFromInt(tc.threshold)
			ctx := context.Background()

			acc := f.customer(t, "totals@example.com")
			p1 := f.product(t, "P1", 100)
			p2 := f.product(t, "P2", 50)
			f.add(t, acc.ID, p1.ID, 2)
			f.add(t, acc.ID, p2.ID, 1)

			o, err := f.orders.Checkout(ctx, acc.ID, validCheckout())
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, o.ID)
			assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(250)), o.Subtotal.String())
			assert.True(t, o.ShippingFee.Equal(decimal.RequireFromString(tc.shipping)), o.ShippingFee.String())
			assert.True(t, o.Total.Equal(decimal.RequireFromString(tc.total)), o.Total.String())
			assert.Equal(t, models.OrderStatusPending, o.Status)
			assert.Equal(t, models.PaymentPending, o.PaymentStatus)

			stored, err := f.orders.GetOrder(ctx, o.ID, acc.ID, false)
			require.NoError(t, err)
			require.Len(t, stored.Items, 2)
			sum := decimal.Zero
			for _, it := range stored.Items {
				sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
			}
			assert.True(t, sum.Add(stored.ShippingFee).Equal(stored.Total))

			cart, err := f.cart.GetCart(ctx, acc.ID)
			require.NoError(t, err)
			assert.Empty(t, cart)
			assert.Contains(t, f.events.Types(), "order_created")
		})
	}
}

func TestOrderService_CheckoutEmptyCart(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	acc := f.customer(t, "empty@example.com")

	_, err := f.orders.Checkout(ctx, acc.ID, validCheckout())
	require.ErrorIs(t, err, ErrEmptyCart)
	require.ErrorIs(t, err, ErrValidation)

	total, _, err := f.orders.ListMine(ctx, acc.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestOrderService_FailedCheckoutLeavesCartIntact(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	acc := f.customer(t, "fail@example.com")
	a := f.product(t, "A", 100)
	b := f.product(t, "B", 30)
	f.add(t, acc.ID, a.ID, 2)
	f.add(t, acc.ID, b.ID, 3)

	// b disappears from the catalog between add and checkout
	require.NoError(t, f.catalog.DeleteProduct(ctx, b.ID))

	_, err := f.orders.Checkout(ctx, acc.ID, validCheckout())
	require.ErrorIs(t, err, ErrConflict)

	cart, err := f.cart.GetCart(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, cart, 2)
	qty := map[uuid.UUID]uint{}
	for _, line := range cart {
		qty[line.ProductID] = line.Quantity
	}
	assert.Equal(t, map[uuid.UUID]uint{a.ID: 2, b.ID: 3}, qty)

	total, _, err := f.orders.ListMine(ctx, acc.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total, "no partial order")

	bad := validCheckout()
	bad.PaymentMethod = "crypto"
	_, err = f.orders.Checkout(ctx, acc.ID, bad)
	require.ErrorIs(t, err, ErrValidation)
}

func TestOrderService_PriceCapturedAtCheckout(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	acc := f.customer(t, "price@example.com")
	p := f.product(t, "Armchair", 100)
	f.add(t, acc.ID, p.ID, 1)

	o, err := f.orders.Checkout(ctx, acc.ID, validCheckout())
	require.NoError(t, err)

	newPrice := decimal.NewFromInt(999)
	_, err = f.catalog.PatchProduct(ctx, p.ID, transport.PatchProductRequest{Price: &newPrice})
	require.NoError(t, err)

	stored, err := f.orders.GetOrder(ctx, o.ID, acc.ID, false)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, stored.Total.Equal(o.Total))
}

func TestOrderService_Visibility(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	owner := f.customer(t, "owner@example.com")
	other := f.customer(t, "other@example.com")
	p := f.product(t, "Table", 300)
	f.add(t, owner.ID, p.ID, 1)
	o, err := f.orders.Checkout(ctx, owner.ID, validCheckout())
	require.NoError(t, err)

	_, err = f.orders.GetOrder(ctx, o.ID, other.ID, false)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.orders.GetOrder(ctx, o.ID, other.ID, true)
	require.NoError(t, err)

	total, _, err := f.orders.ListAll(ctx, repo.OrderFilter{Status: models.OrderStatusPending}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	_, _, err = f.orders.ListAll(ctx, repo.OrderFilter{Status: "lost"}, 0, 10)
	require.ErrorIs(t, err, ErrValidation)
}

func placeOrder(t *testing.T, f *fixture, email string) (*models.Account, *models.Order) {
	t.Helper()
	acc := f.customer(t, email)
	p := f.product(t, "Bed "+email, 700)
	f.add(t, acc.ID, p.ID, 1)
	o, err := f.orders.Checkout(context.Background(), acc.ID, validCheckout())
	require.NoError(t, err)
	return acc, o
}

func TestOrderService_StrictLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	_, o := placeOrder(t, f, "strict@example.com")

	_, err := f.orders.UpdateStatus(ctx, o.ID, models.OrderStatusDelivered)
	require.ErrorIs(t, err, ErrInvalidTransition, "skipping states is rejected")

	for _, s := range []models.OrderStatus{
		models.OrderStatusConfirmed, models.OrderStatusInProduction,
		models.OrderStatusReady, models.OrderStatusDelivered,
	} {
		got, err := f.orders.UpdateStatus(ctx, o.ID, s)
		require.NoError(t, err)
		assert.Equal(t, s, got.Status)
	}

	_, err = f.orders.UpdateStatus(ctx, o.ID, models.OrderStatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition, "terminal states are final")

	got, err := f.orders.UpdateStatus(ctx, o.ID, models.OrderStatusDelivered)
	require.NoError(t, err, "setting the current status is a no-op")
	assert.Equal(t, models.OrderStatusDelivered, got.Status)

	_, err = f.orders.UpdateStatus(ctx, o.ID, "shipped")
	require.ErrorIs(t, err, ErrValidation)
}

func TestOrderService_PermissivePolicy(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.orders.Policy = PolicyPermissive
	ctx := context.Background()
	_, o := placeOrder(t, f, "loose@example.com")

	got, err := f.orders.UpdateStatus(ctx, o.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, got.Status)

	got, err = f.orders.UpdateStatus(ctx, o.ID, models.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)
}

func TestOrderService_PaymentIsIndependent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	_, o := placeOrder(t, f, "pay@example.com")

	got, err := f.orders.UpdatePaymentStatus(ctx, o.ID, models.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, got.Status)

	_, err = f.orders.UpdatePaymentStatus(ctx, o.ID, models.PaymentPending)
	require.ErrorIs(t, err, ErrInvalidTransition)

	got, err = f.orders.UpdatePaymentStatus(ctx, o.ID, models.PaymentRefunded)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, got.PaymentStatus)
	assert.Contains(t, f.events.Types(), "order_payment_changed")
}

func TestOrderService_CustomerCancel(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	acc, o := placeOrder(t, f, "cancel@example.com")
	stranger := f.customer(t, "stranger@example.com")

	_, err := f.orders.Cancel(ctx, stranger.ID, o.ID)
	require.ErrorIs(t, err, ErrNotFound)

	got, err := f.orders.Cancel(ctx, acc.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	_, err = f.orders.Cancel(ctx, acc.ID, o.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.orders.UpsertDelivery(ctx, o.ID, transport.DeliveryRequest{Carrier: "DHL"})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_Delivery(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	_, o := placeOrder(t, f, "ship@example.com")

	d, err := f.orders.UpsertDelivery(ctx, o.ID, transport.DeliveryRequest{Carrier: "DHL", TrackingNumber: "TRK1"})
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryScheduled, d.Status)

	d, err = f.orders.UpsertDelivery(ctx, o.ID, transport.DeliveryRequest{Carrier: "DHL", TrackingNumber: "TRK1", Status: models.DeliveryDelivered})
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryDelivered, d.Status)
	assert.NotNil(t, d.DeliveredAt)

	_, err = f.orders.UpsertDelivery(ctx, uuid.New(), transport.DeliveryRequest{})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.orders.UpsertDelivery(ctx, o.ID, transport.DeliveryRequest{Status: "lost"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestStatusPolicy(t *testing.T) {
	t.Parallel()
	assert.Equal(t, PolicyPermissive, ParseStatusPolicy("permissive"))
	assert.Equal(t, PolicyStrict, ParseStatusPolicy(""))
	assert.Equal(t, PolicyStrict, ParseStatusPolicy("anything"))

	assert.True(t, PolicyStrict.CanMoveOrder(models.OrderStatusReady, models.OrderStatusCancelled))
	assert.False(t, PolicyStrict.CanMoveOrder(models.OrderStatusConfirmed, models.OrderStatusPending))
	assert.False(t, PolicyPermissive.CanMoveOrder(models.OrderStatusPending, "bogus"))
	assert.False(t, PolicyStrict.CanMovePayment(models.PaymentRefunded, models.PaymentPaid))
}
