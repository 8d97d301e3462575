package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/repo"
	"github.com/Skotchmaster/furniture_shop/internal/search"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[uuid.UUID]models.Product
	hits    []uuid.UUID
	failing bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[uuid.UUID]models.Product{}}
}

func (x *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.docs[p.ID] = *p
	return nil
}

func (x *fakeIndex) DeleteProduct(_ context.Context, id uuid.UUID) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, id)
	return nil
}

func (x *fakeIndex) Search(_ context.Context, _ search.Query, _, _ int) (int64, []uuid.UUID, error) {
	if x.failing {
		return 0, nil, errors.New("cluster unavailable")
	}
	return int64(len(x.hits)), x.hits, nil
}

func TestCatalogService_CreateValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name string
		req  transport.CreateProductRequest
	}{
		{name: "missing name", req: transport.CreateProductRequest{Price: decimal.NewFromInt(1), Category: models.CategoryBed}},
		{name: "negative price", req: transport.CreateProductRequest{Name: "x", Price: decimal.NewFromInt(-1), Category: models.CategoryBed}},
		{name: "unknown category", req: transport.CreateProductRequest{Name: "x", Price: decimal.NewFromInt(1), Category: "spaceship"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := f.catalog.CreateProduct(context.Background(), tc.req)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCatalogService_CreatePatchDelete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	idx := newFakeIndex()
	f.catalog.Search = idx
	ctx := context.Background()

	p, err := f.catalog.CreateProduct(ctx, transport.CreateProductRequest{
		Name:     "  Oak Table ",
		Price:    decimal.RequireFromString("199.999"),
		Category: models.CategoryTable,
		Images:   []string{"a.jpg", " ", "b.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Oak Table", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("200")))
	assert.Len(t, p.Images, 2)
	assert.Contains(t, idx.docs, p.ID)

	name := "Walnut Table"
	active := true
	got, err := f.catalog.PatchProduct(ctx, p.ID, transport.PatchProductRequest{Name: &name, Active: &active, Images: &[]string{"c.jpg"}})
	require.NoError(t, err)
	assert.Equal(t, "Walnut Table", got.Name)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "c.jpg", got.Images[0].URL)
	assert.Equal(t, "Walnut Table", idx.docs[p.ID].Name)

	empty := " "
	_, err = f.catalog.PatchProduct(ctx, p.ID, transport.PatchProductRequest{Name: &empty})
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.catalog.PatchProduct(ctx, uuid.New(), transport.PatchProductRequest{Name: &name})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.catalog.DeleteProduct(ctx, p.ID))
	assert.NotContains(t, idx.docs, p.ID)

	_, err = f.catalog.GetProduct(ctx, p.ID, false)
	require.ErrorIs(t, err, ErrNotFound, "inactive products are hidden from shoppers")
	inactive, err := f.catalog.GetProduct(ctx, p.ID, true)
	require.NoError(t, err)
	assert.False(t, inactive.Active)

	require.ErrorIs(t, f.catalog.DeleteProduct(ctx, uuid.New()), ErrNotFound)
	assert.Equal(t, []string{"product_created", "product_updated", "product_deactivated"}, f.events.Types())
}

func TestCatalogService_ListAndCategories(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "Sofa One", 300)
	f.product(t, "Sofa Two", 900)
	_, err := f.catalog.CreateProduct(ctx, transport.CreateProductRequest{Name: "Desk", Price: decimal.NewFromInt(150), Category: models.CategoryDesk})
	require.NoError(t, err)

	maxPrice := decimal.NewFromInt(500)
	total, items, err := f.catalog.ListProducts(ctx, repo.ProductFilter{Category: models.CategorySofa, MaxPrice: &maxPrice}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Sofa One", items[0].Name)

	minPrice := decimal.NewFromInt(600)
	_, _, err = f.catalog.ListProducts(ctx, repo.ProductFilter{MinPrice: &minPrice, MaxPrice: &maxPrice}, 0, 10)
	require.ErrorIs(t, err, ErrValidation)
	_, _, err = f.catalog.ListProducts(ctx, repo.ProductFilter{Category: "boat"}, 0, 10)
	require.ErrorIs(t, err, ErrValidation)

	cats, err := f.catalog.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, len(models.Categories))
	counts := map[models.Category]int64{}
	for _, c := range cats {
		counts[c.Category] = c.Count
	}
	assert.Equal(t, int64(2), counts[models.CategorySofa])
	assert.Equal(t, int64(1), counts[models.CategoryDesk])
	assert.Zero(t, counts[models.CategoryOutdoor])
}

func TestCatalogService_Search(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "Velvet Sofa", 300)
	b := f.product(t, "Linen Sofa", 400)

	_, _, err := f.catalog.SearchProducts(ctx, search.Query{Text: "  "}, 0, 10)
	require.ErrorIs(t, err, ErrValidation)

	// database match without an index
	total, items, err := f.catalog.SearchProducts(ctx, search.Query{Text: "velvet"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, a.ID, items[0].ID)

	idx := newFakeIndex()
	idx.hits = []uuid.UUID{b.ID, a.ID}
	f.catalog.Search = idx
	total, items, err = f.catalog.SearchProducts(ctx, search.Query{Text: "sofa"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID, "index ranking is preserved")

	idx.failing = true
	total, items, err = f.catalog.SearchProducts(ctx, search.Query{Text: "linen"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, b.ID, items[0].ID)
}

func TestCatalogService_Reindex(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.Reindex(ctx)
	require.ErrorIs(t, err, ErrValidation)

	f.product(t, "One", 1)
	f.product(t, "Two", 2)
	idx := newFakeIndex()
	f.catalog.Search = idx
	n, err := f.catalog.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, idx.docs, 2)
}
