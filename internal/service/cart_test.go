package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

func TestCartService_AddIsAdditive(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	acc := f.customer(t, "add@example.com")
	p := f.product(t, "Sofa", 100)

	f.add(t, acc.ID, p.ID, 3)
	f.add(t, acc.ID, p.ID, 2)

	items, err := f.cart.GetCart(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 5, items[0].Quantity)
}

func TestCartService_IdempotencyKey(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	acc := f.customer(t, "idem@example.com")
	other := f.customer(t, "idem2@example.com")
	p := f.product(t, "Chair", 40)
	req := transport.AddToCartRequest{ProductID: p.ID, Quantity: 2}

	item, applied, err := f.cart.AddToCart(ctx, acc.ID, req, "key-1")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.EqualValues(t, 2, item.Quantity)

	item, applied, err = f.cart.AddToCart(ctx, acc.ID, req, "key-1")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.EqualValues(t, 2, item.Quantity)

	_, _, err = f.cart.AddToCart(ctx, acc.ID, transport.AddToCartRequest{ProductID: p.ID, Quantity: 5}, "key-1")
	require.ErrorIs(t, err, ErrConflict)

	// keys are per account
	_, applied, err = f.cart.AddToCart(ctx, other.ID, req, "key-1")
	require.NoError(t, err)
	assert.True(t, applied)

	items, err := f.cart.GetCart(ctx, acc.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, items[0].Quantity)
}

func TestCartService_AddValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	acc := f.customer(t, "val@example.com")
	p := f.product(t, "Lamp", 10)
	require.NoError(t, f.catalog.DeleteProduct(ctx, p.ID))

	_, _, err := f.cart.AddToCart(ctx, acc.ID, transport.AddToCartRequest{ProductID: p.ID, Quantity: 0}, "")
	require.ErrorIs(t, err, ErrValidation)
	_, _, err = f.cart.AddToCart(ctx, acc.ID, transport.AddToCartRequest{Quantity: 1}, "")
	require.ErrorIs(t, err, ErrValidation)
	_, _, err = f.cart.AddToCart(ctx, acc.ID, transport.AddToCartRequest{ProductID: uuid.New(), Quantity: 1}, "")
	require.ErrorIs(t, err, ErrNotFound)
	_, _, err = f.cart.AddToCart(ctx, acc.ID, transport.AddToCartRequest{ProductID: p.ID, Quantity: 1}, "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestCartService_UpdateRemoveClear(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	acc := f.customer(t, "upd@example.com")
	intruder := f.customer(t, "intruder@example.com")
	a := f.product(t, "A", 10)
	b := f.product(t, "B", 20)
	f.add(t, acc.ID, a.ID, 1)
	f.add(t, acc.ID, b.ID, 1)

	items, err := f.cart.GetCart(ctx, acc.ID)
	require.NoError(t, err)
	var lineA uuid.UUID
	for _, it := range items {
		if it.ProductID == a.ID {
			lineA = it.ID
		}
	}
	require.NotEqual(t, uuid.Nil, lineA)

	qty, note := uint(4), "walnut finish"
	got, err := f.cart.UpdateItem(ctx, acc.ID, lineA, transport.UpdateCartItemRequest{Quantity: &qty, Note: &note})
	require.NoError(t, err)
	assert.EqualValues(t, 4, got.Quantity)
	assert.Equal(t, "walnut finish", got.Note)

	zero := uint(0)
	_, err = f.cart.UpdateItem(ctx, acc.ID, lineA, transport.UpdateCartItemRequest{Quantity: &zero})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.cart.UpdateItem(ctx, intruder.ID, lineA, transport.UpdateCartItemRequest{Quantity: &qty})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, f.cart.RemoveItem(ctx, intruder.ID, lineA), ErrNotFound)

	require.NoError(t, f.cart.RemoveItem(ctx, acc.ID, lineA))
	items, err = f.cart.GetCart(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ProductID)

	require.NoError(t, f.cart.Clear(ctx, acc.ID))
	items, err = f.cart.GetCart(ctx, acc.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
