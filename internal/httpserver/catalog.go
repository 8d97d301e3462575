package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/furniture_shop/internal/logging"
	"github.com/Skotchmaster/furniture_shop/internal/middleware/auth"
	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/repo"
	"github.com/Skotchmaster/furniture_shop/internal/search"
	"github.com/Skotchmaster/furniture_shop/internal/service"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func decimalParam(c echo.Context, name string) (*decimal.Decimal, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func productFilter(c echo.Context) (repo.ProductFilter, error) {
	f := repo.ProductFilter{
		Category: models.Category(c.QueryParam("category")),
		Material: c.QueryParam("material"),
		Text:     c.QueryParam("q"),
	}
	var err error
	if f.MinPrice, err = decimalParam(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = decimalParam(c, "max_price"); err != nil {
		return f, err
	}
	return f, nil
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	f, err := productFilter(c)
	if err != nil {
		return badRequest(l, "get_products", "price must be a number", err)
	}
	// admins can browse deactivated products
	f.IncludeInactive = auth.IsAdmin(c) && c.QueryParam("include_inactive") == "true"

	p := pageParams(c)
	total, items, err := h.Svc.ListProducts(ctx, f, p.offset, p.limit)
	if err != nil {
		return fail(l, "get_products", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(items, p.page, p.offset, p.limit, total))
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := search.Query{Text: c.QueryParam("q"), Category: models.Category(c.QueryParam("category"))}
	p := pageParams(c)
	total, items, err := h.Svc.SearchProducts(ctx, q, p.offset, p.limit)
	if err != nil {
		return fail(l, "search_products", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(items, p.page, p.offset, p.limit, total))
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_product", "id is not a uuid", err)
	}

	p, err := h.Svc.GetProduct(ctx, id, auth.IsAdmin(c))
	if err != nil {
		return fail(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) Categories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.categories")

	cats, err := h.Svc.Categories(ctx)
	if err != nil {
		return fail(l, "categories", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_create", "invalid body", err)
	}

	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "product_create", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "product_patch", "id is not a uuid", err)
	}
	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_patch", "invalid body", err)
	}

	p, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return fail(l, "product_patch", err)
	}

	l.Info("patch_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "product_delete", "id is not a uuid", err)
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "product_delete", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) Reindex(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.reindex")

	n, err := h.Svc.Reindex(ctx)
	if err != nil {
		return fail(l, "reindex", err)
	}
	l.Info("reindex_success", "indexed", n)
	return c.JSON(http.StatusOK, transport.ReindexResponse{Indexed: n})
}
