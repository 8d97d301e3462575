package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/furniture_shop/internal/logging"
	"github.com/Skotchmaster/furniture_shop/internal/middleware/auth"
	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/repo"
	"github.com/Skotchmaster/furniture_shop/internal/service"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	id, err := accountID(c)
	if err != nil {
		return err
	}
	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "checkout", "invalid body", err)
	}

	o, err := h.Svc.Checkout(ctx, id, req)
	if err != nil {
		return fail(l, "checkout", err)
	}

	l.Info("checkout_success", "order_id", o.ID, "total", o.Total)
	return c.JSON(http.StatusCreated, transport.CheckoutResponse{
		OrderID:     o.ID,
		Subtotal:    o.Subtotal,
		ShippingFee: o.ShippingFee,
		Total:       o.Total,
		Status:      string(o.Status),
	})
}

func (h *OrderHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_mine")

	id, err := accountID(c)
	if err != nil {
		return err
	}
	p := pageParams(c)
	total, items, err := h.Svc.ListMine(ctx, id, p.offset, p.limit)
	if err != nil {
		return fail(l, "list_orders", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(items, p.page, p.offset, p.limit, total))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	requester, err := accountID(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_order", "id is not a uuid", err)
	}

	o, err := h.Svc.GetOrder(ctx, id, requester, auth.IsAdmin(c))
	if err != nil {
		return fail(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	requester, err := accountID(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "cancel_order", "id is not a uuid", err)
	}

	o, err := h.Svc.Cancel(ctx, requester, id)
	if err != nil {
		return fail(l, "cancel_order", err)
	}
	l.Info("cancel_order_success", "order_id", o.ID)
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders.list")

	f := repo.OrderFilter{Status: models.OrderStatus(c.QueryParam("status"))}
	if v := c.QueryParam("account_id"); v != "" {
		acc, err := uuid.Parse(v)
		if err != nil {
			return badRequest(l, "list_all_orders", "account_id is not a uuid", err)
		}
		f.AccountID = &acc
	}

	p := pageParams(c)
	total, items, err := h.Svc.ListAll(ctx, f, p.offset, p.limit)
	if err != nil {
		return fail(l, "list_all_orders", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(items, p.page, p.offset, p.limit, total))
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders.status")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "update_order_status", "id is not a uuid", err)
	}
	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_order_status", "invalid body", err)
	}

	o, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_order_status", err)
	}
	l.Info("update_order_status_success", "order_id", id, "status", o.Status)
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) UpdatePayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders.payment")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "update_payment_status", "id is not a uuid", err)
	}
	var req transport.UpdatePaymentStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_payment_status", "invalid body", err)
	}

	o, err := h.Svc.UpdatePaymentStatus(ctx, id, req.PaymentStatus)
	if err != nil {
		return fail(l, "update_payment_status", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) UpsertDelivery(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders.delivery")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "upsert_delivery", "id is not a uuid", err)
	}
	var req transport.DeliveryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "upsert_delivery", "invalid body", err)
	}

	d, err := h.Svc.UpsertDelivery(ctx, id, req)
	if err != nil {
		return fail(l, "upsert_delivery", err)
	}
	return c.JSON(http.StatusOK, d)
}
