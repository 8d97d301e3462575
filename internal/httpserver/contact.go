package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/furniture_shop/internal/logging"
	"github.com/Skotchmaster/furniture_shop/internal/repo"
	"github.com/Skotchmaster/furniture_shop/internal/service"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

type ContactHTTP struct {
	Svc *service.ContactService
}

func (h *ContactHTTP) CreateInquiry(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.create_inquiry")

	var req transport.InquiryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_inquiry", "invalid body", err)
	}
	in, err := h.Svc.CreateInquiry(ctx, optionalAccount(c), req)
	if err != nil {
		return fail(l, "create_inquiry", err)
	}
	l.Info("create_inquiry_success", "inquiry_id", in.ID)
	return c.JSON(http.StatusCreated, in)
}

func (h *ContactHTTP) MyInquiries(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.my_inquiries")

	id, err := accountID(c)
	if err != nil {
		return err
	}
	p := pageParams(c)
	total, items, err := h.Svc.ListInquiries(ctx, repo.ContactFilter{AccountID: &id}, p.offset, p.limit)
	if err != nil {
		return fail(l, "list_inquiries", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(items, p.page, p.offset, p.limit, total))
}

func (h *ContactHTTP) CreateDesignRequest(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.create_design_request")

	var req transport.DesignRequestRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_design_request", "invalid body", err)
	}

	d, err := h.Svc.CreateDesignRequest(ctx, optionalAccount(c), req)
	if err != nil {
		return fail(l, "create_design_request", err)
	}
	l.Info("create_design_request_success", "design_request_id", d.ID)
	return c.JSON(http.StatusCreated, d)
}

func (h *ContactHTTP) MyDesignRequests(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.my_design_requests")

	id, err := accountID(c)
	if err != nil {
		return err
	}
	p := pageParams(c)
	total, items, err := h.Svc.ListDesignRequests(ctx, repo.ContactFilter{AccountID: &id}, p.offset, p.limit)
	if err != nil {
		return fail(l, "list_design_requests", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(items, p.page, p.offset, p.limit, total))
}

func (h *ContactHTTP) ListInquiries(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.inquiries.list")

	p := pageParams(c)
	total, items, err := h.Svc.ListInquiries(ctx, repo.ContactFilter{Status: c.QueryParam("status")}, p.offset, p.limit)
	if err != nil {
		return fail(l, "list_inquiries", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(items, p.page, p.offset, p.limit, total))
}

func (h *ContactHTTP) GetInquiry(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.inquiries.get")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_inquiry", "id is not a uuid", err)
	}
	in, err := h.Svc.GetInquiry(ctx, id)
	if err != nil {
		return fail(l, "get_inquiry", err)
	}
	return c.JSON(http.StatusOK, in)
}

func (h *ContactHTTP) UpdateInquiry(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.inquiries.update")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "update_inquiry", "id is not a uuid", err)
	}
	var req transport.UpdateInquiryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_inquiry", "invalid body", err)
	}
	in, err := h.Svc.UpdateInquiry(ctx, id, req)
	if err != nil {
		return fail(l, "update_inquiry", err)
	}
	return c.JSON(http.StatusOK, in)
}

func (h *ContactHTTP) ListDesignRequests(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.design_requests.list")

	p := pageParams(c)
	total, items, err := h.Svc.ListDesignRequests(ctx, repo.ContactFilter{Status: c.QueryParam("status")}, p.offset, p.limit)
	if err != nil {
		return fail(l, "list_design_requests", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(items, p.page, p.offset, p.limit, total))
}

func (h *ContactHTTP) GetDesignRequest(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.design_requests.get")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_design_request", "id is not a uuid", err)
	}
	d, err := h.Svc.GetDesignRequest(ctx, id)
	if err != nil {
		return fail(l, "get_design_request", err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *ContactHTTP) UpdateDesignRequest(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.design_requests.update")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "update_design_request", "id is not a uuid", err)
	}
	var req transport.UpdateDesignRequestRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_design_request", "invalid body", err)
	}
	d, err := h.Svc.UpdateDesignRequest(ctx, id, req)
	if err != nil {
		return fail(l, "update_design_request", err)
	}
	return c.JSON(http.StatusOK, d)
}
