package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

func TestInventoryService_SetAndAdjust(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Shelf", 80)

	_, err := f.inventory.Get(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)

	level := 5
	rec, err := f.inventory.Set(ctx, p.ID, transport.SetInventoryRequest{Quantity: 10, ReorderLevel: &level})
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)
	assert.Equal(t, 5, rec.ReorderLevel)

	rec, err = f.inventory.Set(ctx, p.ID, transport.SetInventoryRequest{Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Quantity)
	assert.Equal(t, 5, rec.ReorderLevel, "reorder level kept when omitted")

	total, low, err := f.inventory.List(ctx, true, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, p.ID, low[0].ProductID)

	rec, err = f.inventory.Adjust(ctx, p.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)

	_, err = f.inventory.Adjust(ctx, p.ID, -11)
	require.ErrorIs(t, err, ErrValidation)
	rec, err = f.inventory.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity, "rejected adjustment is rolled back")

	_, err = f.inventory.Adjust(ctx, p.ID, 0)
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.inventory.Adjust(ctx, uuid.New(), 1)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.inventory.Set(ctx, p.ID, transport.SetInventoryRequest{Quantity: -1})
	require.ErrorIs(t, err, ErrValidation)
}

func TestInventoryService_CheckoutDoesNotReserve(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	acc := f.customer(t, "stock@example.com")
	p := f.product(t, "Stool", 20)
	_, err := f.inventory.Set(ctx, p.ID, transport.SetInventoryRequest{Quantity: 1})
	require.NoError(t, err)

	f.add(t, acc.ID, p.ID, 4)
	_, err = f.orders.Checkout(ctx, acc.ID, validCheckout())
	require.NoError(t, err)

	rec, err := f.inventory.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Quantity)
}
