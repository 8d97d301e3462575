package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/furniture_shop/internal/tokens"
)

// RefreshFunc rotates the refresh token, writes the new session cookies and
// returns the new access token.
type RefreshFunc func(c echo.Context, refreshToken string) (string, error)

// AutoRefresh renews an expired cookie session before RequireAuth checks
// the access token. Bearer requests and invalid (not expired) tokens pass
// through untouched.
func (a *Auth) AutoRefresh(refresh RefreshFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Header.Get(echo.HeaderAuthorization) != "" {
				return next(c)
			}

			if ck, err := req.Cookie(tokens.AccessCookie); err == nil && ck.Value != "" {
				_, err := tokens.AccessClaimsFromToken(ck.Value, a.JWTSecret)
				if err == nil || !errors.Is(err, jwt.ErrTokenExpired) {
					return next(c)
				}
			}

			rc, err := req.Cookie(tokens.RefreshCookie)
			if err != nil || rc.Value == "" {
				return next(c)
			}
			access, err := refresh(c, rc.Value)
			if err != nil {
				return next(c)
			}
			replaceCookie(req, tokens.AccessCookie, access)
			return next(c)
		}
	}
}

func replaceCookie(req *http.Request, name, value string) {
	parts := []string{}
	for _, ck := range req.Cookies() {
		if ck.Name != name {
			parts = append(parts, ck.Name+"="+ck.Value)
		}
	}
	parts = append(parts, name+"="+value)
	req.Header.Set("Cookie", strings.Join(parts, "; "))
}
