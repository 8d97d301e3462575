package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/furniture_shop/internal/middleware/auth"
	"github.com/Skotchmaster/furniture_shop/internal/service"
	"github.com/Skotchmaster/furniture_shop/internal/util"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail logs a service error under "<op>_error" and converts it to an HTTP error.
// Internal errors are not echoed to the client.
func fail(l *slog.Logger, op string, err error) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		l.Error(op+"_error", "status", code, "error", err)
		return echo.NewHTTPError(code, "internal error")
	}
	l.Warn(op+"_error", "status", code, "error", err)
	return echo.NewHTTPError(code, err.Error())
}

func badRequest(l *slog.Logger, op, reason string, err error) error {
	l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

func paramID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

func accountID(c echo.Context) (uuid.UUID, error) {
	id, ok := auth.AccountID(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

// optionalAccount is nil for anonymous visitors.
func optionalAccount(c echo.Context) *uuid.UUID {
	if id, ok := auth.AccountID(c); ok {
		return &id
	}
	return nil
}

type page struct {
	page, offset, limit int
}

func pageParams(c echo.Context) page {
	p := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(p, size)
	if p < 1 {
		p = 1
	}
	return page{page: p, offset: offset, limit: limit}
}
