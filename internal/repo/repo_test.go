package repo

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/furniture_shop/internal/db"
	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/tokens"
)

func newRepo(t *testing.T) *GormRepo {
	t.Helper()
	gdb, err := db.OpenMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return New(gdb)
}

func seedAccount(t *testing.T, r *GormRepo, email string) *models.Account {
	t.Helper()
	a := &models.Account{Email: email, Name: "Test", PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, r.CreateAccountIfNotExists(context.Background(), a))
	return a
}

func seedProduct(t *testing.T, r *GormRepo, name, price string, cat models.Category) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Category: cat, Material: "oak", Active: true}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func TestCreateAccountIfNotExists(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	seedAccount(t, r, "a@example.com")

	err := r.CreateAccountIfNotExists(context.Background(), &models.Account{Email: "a@example.com", Name: "Dup", PasswordHash: "y"})
	require.ErrorIs(t, err, ErrAccountExists)
}

func TestAddToCart_IsAdditive(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()
	a := seedAccount(t, r, "cart@example.com")
	p := seedProduct(t, r, "Sofa", "100", models.CategorySofa)

	require.NoError(t, r.AddToCart(ctx, &models.CartItem{AccountID: a.ID, ProductID: p.ID, Quantity: 2}))
	item := &models.CartItem{AccountID: a.ID, ProductID: p.ID, Quantity: 3, Note: "blue"}
	require.NoError(t, r.AddToCart(ctx, item))
	assert.EqualValues(t, 5, item.Quantity)

	items, err := r.GetCart(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 5, items[0].Quantity)
	assert.Equal(t, "blue", items[0].Note)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Sofa", items[0].Product.Name)
}

func TestCartItemScopedToAccount(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()
	a := seedAccount(t, r, "one@example.com")
	b := seedAccount(t, r, "two@example.com")
	p := seedProduct(t, r, "Chair", "40", models.CategoryChair)

	item := &models.CartItem{AccountID: a.ID, ProductID: p.ID, Quantity: 1}
	require.NoError(t, r.AddToCart(ctx, item))

	err := r.DeleteCartItem(ctx, b.ID, item.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, r.DeleteCartItem(ctx, a.ID, item.ID))
}

func TestRotateRefreshToken_OnlyOnce(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()
	a := seedAccount(t, r, "rt@example.com")

	raw := "refresh-raw"
	old := &models.RefreshToken{Token: tokens.Sha256Hex(raw), AccountID: a.ID, JTI: "jti-1", ExpiresAt: time.Now().Add(time.Hour).Unix()}
	require.NoError(t, r.AddRefreshToken(ctx, old))

	next := &models.RefreshToken{Token: tokens.Sha256Hex("next"), AccountID: a.ID, JTI: "jti-2", ExpiresAt: time.Now().Add(time.Hour).Unix()}
	require.NoError(t, r.RotateRefreshToken(ctx, "jti-1", raw, next))

	again := &models.RefreshToken{Token: tokens.Sha256Hex("again"), AccountID: a.ID, JTI: "jti-3", ExpiresAt: time.Now().Add(time.Hour).Unix()}
	require.ErrorIs(t, r.RotateRefreshToken(ctx, "jti-1", raw, again), ErrTokenRevoked)

	wrongRaw := &models.RefreshToken{Token: tokens.Sha256Hex("w"), AccountID: a.ID, JTI: "jti-4", ExpiresAt: time.Now().Add(time.Hour).Unix()}
	require.ErrorIs(t, r.RotateRefreshToken(ctx, "jti-2", "not-next", wrongRaw), ErrTokenRevoked)
}

func TestListProducts_Filters(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()
	seedProduct(t, r, "Oak sofa", "900", models.CategorySofa)
	seedProduct(t, r, "Small chair", "50", models.CategoryChair)
	hidden := seedProduct(t, r, "Old chair", "20", models.CategoryChair)
	require.NoError(t, r.SetProductActive(ctx, hidden.ID, false))

	total, items, err := r.ListProducts(ctx, ProductFilter{Category: models.CategoryChair}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Small chair", items[0].Name)

	minPrice := decimal.NewFromInt(100)
	total, _, err = r.ListProducts(ctx, ProductFilter{MinPrice: &minPrice}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	total, _, err = r.ListProducts(ctx, ProductFilter{Text: "CHAIR", IncludeInactive: true}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = r.GetProduct(ctx, hidden.ID, false)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestProductsByIDs_KeepsOrder(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	a := seedProduct(t, r, "A", "1", models.CategoryDecor)
	b := seedProduct(t, r, "B", "2", models.CategoryDecor)

	got, err := r.ProductsByIDs(context.Background(), []uuid.UUID{b.ID, uuid.New(), a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Name)
	assert.Equal(t, "A", got[1].Name)
}

func TestSaveProduct_ReplacesImages(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Bed", "300", models.CategoryBed)

	require.NoError(t, r.SaveProduct(ctx, p, []models.ProductImage{{URL: "a.jpg", Position: 1}, {URL: "b.jpg", Position: 0}}))
	got, err := r.GetProduct(ctx, p.ID, false)
	require.NoError(t, err)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "b.jpg", got.Images[0].URL)

	got.Name = "King bed"
	require.NoError(t, r.SaveProduct(ctx, got, nil))
	got, err = r.GetProduct(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "King bed", got.Name)
	assert.Len(t, got.Images, 2)
}

func TestUpsertDeliveryAndInventory(t *testing.T) {
	t.Parallel()
	r := newRepo(t)
	ctx := context.Background()
	a := seedAccount(t, r, "d@example.com")
	p := seedProduct(t, r, "Desk", "120", models.CategoryDesk)

	o := &models.Order{
		AccountID: a.ID, ShipRecipient: "T", ShipPhone: "1", ShipAddress: "Main 1", ShipCity: "X",
		PaymentMethod: models.PaymentCash, Subtotal: decimal.NewFromInt(120), ShippingFee: decimal.Zero,
		Total: decimal.NewFromInt(120), Status: models.OrderStatusPending, PaymentStatus: models.PaymentPending,
		Items: []models.OrderItem{{ProductID: p.ID, ProductName: "Desk", Quantity: 1, UnitPrice: decimal.NewFromInt(120), LineTotal: decimal.NewFromInt(120)}},
	}
	require.NoError(t, r.CreateOrder(ctx, o))

	require.NoError(t, r.UpsertDelivery(ctx, &models.Delivery{OrderID: o.ID, Carrier: "DHL", Status: models.DeliveryScheduled}))
	require.NoError(t, r.UpsertDelivery(ctx, &models.Delivery{OrderID: o.ID, Carrier: "UPS", Status: models.DeliveryInTransit}))
	d, err := r.GetDelivery(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "UPS", d.Carrier)
	assert.Equal(t, models.DeliveryInTransit, d.Status)

	rec, err := r.AdjustInventory(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, rec.Quantity)
	require.NoError(t, r.UpsertInventory(ctx, &models.InventoryRecord{ProductID: p.ID, Quantity: 1, ReorderLevel: 2}))
	n, err := r.CountLowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	totals, err := r.AccountOrderTotals(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.Count)
	assert.True(t, totals.Spent.Equal(decimal.NewFromInt(120)))
}

func TestFindCartReceipt_MissIsQuiet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var buf bytes.Buffer
	base := newRepo(t)
	r := New(base.DB.Session(&gorm.Session{
		Logger: logger.New(log.New(&buf, "", 0), logger.Config{LogLevel: logger.Warn}),
	}))
	a := seedAccount(t, r, "receipt@example.com")
	p := seedProduct(t, r, "Chair", "40", models.CategoryChair)

	_, err := r.FindCartReceipt(ctx, a.ID, "first-key")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NotContains(t, buf.String(), "record not found")

	require.NoError(t, r.CreateCartReceipt(ctx, &models.CartAddReceipt{AccountID: a.ID, Key: "first-key", ProductID: p.ID, Quantity: 2}))
	rec, err := r.FindCartReceipt(ctx, a.ID, "first-key")
	require.NoError(t, err)
	assert.Equal(t, uint(2), rec.Quantity)

	_, err = r.FindCartReceipt(ctx, uuid.New(), "first-key")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderTotals_ExactDecimalSums(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRepo(t)
	a := seedAccount(t, r, "sum@example.com")

	price := decimal.RequireFromString("19.99")
	place := func(status models.OrderStatus, paid models.PaymentStatus) {
		require.NoError(t, r.CreateOrder(ctx, &models.Order{
			AccountID: a.ID, ShipRecipient: "T", ShipPhone: "1", ShipAddress: "Main 1", ShipCity: "X",
			PaymentMethod: models.PaymentCard, Subtotal: price, ShippingFee: decimal.Zero, Total: price,
			Status: status, PaymentStatus: paid,
		}))
	}
	place(models.OrderStatusPending, models.PaymentPaid)
	place(models.OrderStatusConfirmed, models.PaymentPaid)
	place(models.OrderStatusReady, models.PaymentPaid)
	place(models.OrderStatusCancelled, models.PaymentPending)

	totals, err := r.AccountOrderTotals(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), totals.Count)
	assert.Equal(t, "59.97", totals.Spent.String())

	stats, err := r.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "59.97", stats.PaidRevenue.String())

	empty, err := r.AccountOrderTotals(ctx, uuid.New())
	require.NoError(t, err)
	assert.True(t, empty.Spent.IsZero())
}
