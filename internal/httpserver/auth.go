package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/furniture_shop/internal/logging"
	"github.com/Skotchmaster/furniture_shop/internal/service"
	"github.com/Skotchmaster/furniture_shop/internal/tokens"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
	// SecureCookies marks session cookies Secure.
	SecureCookies bool
}

func (h *AuthHTTP) setSession(c echo.Context, res *service.LoginResult) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.AccessToken, "/", res.AccessExp, h.SecureCookies))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, res.RefreshToken, "/", res.RefreshExp, h.SecureCookies))
}

func (h *AuthHTTP) clearSession(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/", h.SecureCookies))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/", h.SecureCookies))
}

// renewSession backs cookie auto-refresh. A rejected refresh token ends the
// cookie session.
func (h *AuthHTTP) renewSession(c echo.Context, refresh string) (string, error) {
	ctx := c.Request().Context()
	res, err := h.Svc.Refresh(ctx, refresh)
	if err != nil {
		logging.FromContext(ctx).With("handler", "auth.renew").Warn("renew_error", "error", err)
		h.clearSession(c)
		return "", err
	}
	h.setSession(c, res)
	return res.AccessToken, nil
}

func authResponse(res *service.LoginResult) transport.AuthResponse {
	return transport.AuthResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.AccessExp,
		Account:      res.Account,
	}
}

// refreshToken takes the token from the body and falls back to the cookie.
func refreshToken(c echo.Context, req transport.RefreshRequest) string {
	if req.RefreshToken != "" {
		return req.RefreshToken
	}
	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
		return ck.Value
	}
	return ""
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register", "invalid body", err)
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register", err)
	}

	h.setSession(c, res)
	l.Info("register_success", "account_id", res.Account.ID)
	return c.JSON(http.StatusCreated, authResponse(res))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login", err)
	}

	h.setSession(c, res)
	l.Info("login_success", "account_id", res.Account.ID)
	return c.JSON(http.StatusOK, authResponse(res))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "refresh", "invalid body", err)
	}

	res, err := h.Svc.Refresh(ctx, refreshToken(c, req))
	if err != nil {
		h.clearSession(c)
		return fail(l, "refresh", err)
	}

	h.setSession(c, res)
	return c.JSON(http.StatusOK, authResponse(res))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	var req transport.RefreshRequest
	_ = c.Bind(&req)

	err := h.Svc.Logout(ctx, refreshToken(c, req))
	h.clearSession(c)
	if err != nil {
		l.Error("logout_error", "status", http.StatusInternalServerError, "reason", "cannot revoke refresh token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("logout_success")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	id, err := accountID(c)
	if err != nil {
		return err
	}
	acc, err := h.Svc.Me(ctx, id)
	if err != nil {
		return fail(l, "me", err)
	}
	return c.JSON(http.StatusOK, acc)
}

func (h *AuthHTTP) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.update_me")

	id, err := accountID(c)
	if err != nil {
		return err
	}
	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_me", "invalid body", err)
	}

	acc, err := h.Svc.UpdateProfile(ctx, id, req)
	if err != nil {
		return fail(l, "update_me", err)
	}
	return c.JSON(http.StatusOK, acc)
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.change_password")

	id, err := accountID(c)
	if err != nil {
		return err
	}
	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "change_password", "invalid body", err)
	}

	if err := h.Svc.ChangePassword(ctx, id, req); err != nil {
		return fail(l, "change_password", err)
	}

	// every session was revoked, including this one
	h.clearSession(c)
	l.Info("change_password_success", "account_id", id)
	return c.NoContent(http.StatusNoContent)
}
