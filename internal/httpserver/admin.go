package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/furniture_shop/internal/logging"
	"github.com/Skotchmaster/furniture_shop/internal/service"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

type AdminHTTP struct {
	Svc       *service.AdminService
	Inventory *service.InventoryService
}

func (h *AdminHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.dashboard")

	stats, err := h.Svc.Dashboard(ctx)
	if err != nil {
		return fail(l, "dashboard", err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHTTP) ListCustomers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.customers.list")

	p := pageParams(c)
	total, items, err := h.Svc.ListCustomers(ctx, c.QueryParam("q"), p.offset, p.limit)
	if err != nil {
		return fail(l, "list_customers", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(items, p.page, p.offset, p.limit, total))
}

func (h *AdminHTTP) GetCustomer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.customers.get")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_customer", "id is not a uuid", err)
	}
	detail, err := h.Svc.Customer(ctx, id)
	if err != nil {
		return fail(l, "get_customer", err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *AdminHTTP) ListInventory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.inventory.list")

	p := pageParams(c)
	total, items, err := h.Inventory.List(ctx, c.QueryParam("low") == "true", p.offset, p.limit)
	if err != nil {
		return fail(l, "list_inventory", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(items, p.page, p.offset, p.limit, total))
}

func (h *AdminHTTP) GetInventory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.inventory.get")

	id, err := paramID(c, "product_id")
	if err != nil {
		return badRequest(l, "get_inventory", "product_id is not a uuid", err)
	}
	rec, err := h.Inventory.Get(ctx, id)
	if err != nil {
		return fail(l, "get_inventory", err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *AdminHTTP) SetInventory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.inventory.set")

	id, err := paramID(c, "product_id")
	if err != nil {
		return badRequest(l, "set_inventory", "product_id is not a uuid", err)
	}
	var req transport.SetInventoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "set_inventory", "invalid body", err)
	}
	rec, err := h.Inventory.Set(ctx, id, req)
	if err != nil {
		return fail(l, "set_inventory", err)
	}
	l.Info("set_inventory_success", "product_id", id, "quantity", rec.Quantity)
	return c.JSON(http.StatusOK, rec)
}

func (h *AdminHTTP) AdjustInventory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.inventory.adjust")

	id, err := paramID(c, "product_id")
	if err != nil {
		return badRequest(l, "adjust_inventory", "product_id is not a uuid", err)
	}
	var req transport.AdjustInventoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "adjust_inventory", "invalid body", err)
	}
	rec, err := h.Inventory.Adjust(ctx, id, req.Delta)
	if err != nil {
		return fail(l, "adjust_inventory", err)
	}
	return c.JSON(http.StatusOK, rec)
}
