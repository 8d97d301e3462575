package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/furniture_shop/internal/app"
	"github.com/Skotchmaster/furniture_shop/internal/config"
	"github.com/Skotchmaster/furniture_shop/internal/db"
	"github.com/Skotchmaster/furniture_shop/internal/logging"
	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

func TestShopctlFlow(t *testing.T) {
	gdb, err := db.OpenMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	a := app.New(app.Options{
		Config: config.Config{
			JWTAccessSecret:       []byte("access"),
			JWTRefreshSecret:      []byte("refresh"),
			FreeShippingThreshold: decimal.NewFromInt(500),
			ShippingFee:           decimal.NewFromInt(50),
		},
		DB:     gdb,
		Logger: logging.NewWithWriter("error", &bytes.Buffer{}),
	})
	srv := httptest.NewServer(a.Echo)
	t.Cleanup(srv.Close)

	p, err := a.Catalog.CreateProduct(context.Background(), transport.CreateProductRequest{
		Name: "Oak Table", Price: decimal.NewFromInt(300), Category: models.CategoryTable, Material: "oak",
	})
	require.NoError(t, err)

	state := t.TempDir()
	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		cmd := newApp()
		cmd.Writer = &out
		cmd.ErrWriter = &bytes.Buffer{}
		base := []string{"shopctl", "--api", srv.URL, "--state-dir", state}
		require.NoError(t, cmd.Run(append(base, args...)))
		return out.String()
	}

	assert.Contains(t, run("products", "--category", "table"), "Oak Table")
	run("add", "--qty", "2", p.ID.String())
	assert.Contains(t, run("cart"), "2 item(s) in local cart")

	assert.Contains(t, run("register", "--email", "cli@example.com", "--password", "password123", "--name", "Cli"), "merged 1 cart line(s)")
	assert.Contains(t, run("cart"), "subtotal 600.00")
	assert.Contains(t, run("whoami"), "cart=server")

	placed := run("checkout", "--recipient", "Jane", "--phone", "555", "--address", "1 Main St", "--city", "Springfield")
	assert.Contains(t, placed, "total 600.00")
	assert.Contains(t, run("orders"), "pending")

	run("logout")
	assert.Contains(t, run("whoami"), "not signed in")
}
