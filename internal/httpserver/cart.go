package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/furniture_shop/internal/logging"
	"github.com/Skotchmaster/furniture_shop/internal/service"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

// IdempotencyKeyHeader lets a client retry an add without applying it twice.
const IdempotencyKeyHeader = "Idempotency-Key"

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	id, err := accountID(c)
	if err != nil {
		return err
	}
	items, err := h.Svc.GetCart(ctx, id)
	if err != nil {
		return fail(l, "get_cart", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartResponse(items))
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	id, err := accountID(c)
	if err != nil {
		return err
	}
	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart", "invalid body", err)
	}

	key := c.Request().Header.Get(IdempotencyKeyHeader)
	item, applied, err := h.Svc.AddToCart(ctx, id, req, key)
	if err != nil {
		return fail(l, "add_to_cart", err)
	}
	items, err := h.Svc.GetCart(ctx, id)
	if err != nil {
		return fail(l, "add_to_cart", err)
	}

	resp := transport.AddToCartResponse{Applied: applied, Cart: transport.NewCartResponse(items)}
	if item != nil {
		line := transport.NewCartLine(*item)
		resp.Item = &line
	}
	if !applied {
		l.Info("add_to_cart_replayed", "idempotency_key", key)
		return c.JSON(http.StatusOK, resp)
	}
	l.Info("add_to_cart_success", "product_id", req.ProductID)
	return c.JSON(http.StatusCreated, resp)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	id, err := accountID(c)
	if err != nil {
		return err
	}
	itemID, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "update_cart_item", "id is not a uuid", err)
	}
	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_cart_item", "invalid body", err)
	}

	item, err := h.Svc.UpdateItem(ctx, id, itemID, req)
	if err != nil {
		return fail(l, "update_cart_item", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartLine(*item))
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	id, err := accountID(c)
	if err != nil {
		return err
	}
	itemID, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "remove_cart_item", "id is not a uuid", err)
	}
	if err := h.Svc.RemoveItem(ctx, id, itemID); err != nil {
		return fail(l, "remove_cart_item", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	id, err := accountID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Clear(ctx, id); err != nil {
		return fail(l, "clear_cart", err)
	}
	l.Info("cart_cleared")
	return c.NoContent(http.StatusNoContent)
}
