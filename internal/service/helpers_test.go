package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/furniture_shop/internal/db"
	"github.com/Skotchmaster/furniture_shop/internal/events"
	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/repo"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

type fixture struct {
	repo      *repo.GormRepo
	events    *events.Recorder
	auth      *AuthService
	catalog   *CatalogService
	cart      *CartService
	orders    *OrderService
	inventory *InventoryService
	contact   *ContactService
	admin     *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := db.OpenMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := repo.New(gdb)
	rec := &events.Recorder{}
	return &fixture{
		repo:   r,
		events: rec,
		auth: &AuthService{
			Repo:          r,
			Events:        rec,
			JWTSecret:     []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
		},
		catalog: &CatalogService{Repo: r, Events: rec},
		cart:    &CartService{Repo: r},
		orders: &OrderService{
			Repo:                  r,
			Events:                rec,
			FreeShippingThreshold: decimal.NewFromInt(500),
			ShippingFee:           decimal.NewFromInt(50),
			Policy:                PolicyStrict,
		},
		inventory: &InventoryService{Repo: r},
		contact:   &ContactService{Repo: r, Events: rec},
		admin:     &AdminService{Repo: r},
	}
}

func (f *fixture) customer(t *testing.T, email string) *models.Account {
	t.Helper()
	res, err := f.auth.Register(context.Background(), transport.RegisterRequest{
		Email: email, Password: "password123", Name: "Customer",
	})
	require.NoError(t, err)
	return res.Account
}

func (f *fixture) product(t *testing.T, name string, price int64) *models.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), transport.CreateProductRequest{
		Name: name, Price: decimal.NewFromInt(price), Category: models.CategorySofa, Material: "oak",
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) add(t *testing.T, acc uuid.UUID, p uuid.UUID, qty uint) {
	t.Helper()
	_, _, err := f.cart.AddToCart(context.Background(), acc, transport.AddToCartRequest{ProductID: p, Quantity: qty}, "")
	require.NoError(t, err)
}

func validCheckout() transport.CheckoutRequest {
	return transport.CheckoutRequest{
		ShipRecipient: "Jane Doe",
		ShipPhone:     "+1 555 0100",
		ShipAddress:   "1 Main St",
		ShipCity:      "Springfield",
		PaymentMethod: models.PaymentBankTransfer,
	}
}
