package auth

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/tokens"
)

const (
	tokenKey     = "user"
	accountIDKey = "account_id"
	roleKey      = "role"
	tokenLookup  = "header:Authorization:Bearer ,cookie:" + tokens.AccessCookie
)

type Auth struct {
	JWTSecret []byte
}

func New(secret []byte) *Auth {
	return &Auth{JWTSecret: secret}
}

func (a *Auth) config() echojwt.Config {
	return echojwt.Config{
		SigningKey:    a.JWTSecret,
		SigningMethod: echojwt.AlgorithmHS256,
		ContextKey:    tokenKey,
		TokenLookup:   tokenLookup,
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(tokens.AccessClaims) },
		SuccessHandler: func(c echo.Context) {
			setAccountContext(c)
		},
	}
}

// RequireAuth rejects requests without a valid access token.
func (a *Auth) RequireAuth() echo.MiddlewareFunc {
	cfg := a.config()
	cfg.ErrorHandler = func(c echo.Context, err error) error {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing access token")
	}
	return echojwt.WithConfig(cfg)
}

// Optional attaches the account when a valid token is present and lets
// anonymous requests through.
func (a *Auth) Optional() echo.MiddlewareFunc {
	cfg := a.config()
	cfg.ContinueOnIgnoredError = true
	cfg.ErrorHandler = func(c echo.Context, err error) error {
		return nil
	}
	return echojwt.WithConfig(cfg)
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := AccountID(c); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing access token")
		}
		if Role(c) != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		return next(c)
	}
}

func setAccountContext(c echo.Context) {
	tok, ok := c.Get(tokenKey).(*jwt.Token)
	if !ok {
		return
	}
	claims, ok := tok.Claims.(*tokens.AccessClaims)
	if !ok {
		return
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return
	}
	c.Set(accountIDKey, id)
	c.Set(roleKey, claims.Role)
}

func AccountID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(accountIDKey).(uuid.UUID)
	return id, ok
}

func Role(c echo.Context) string {
	r, _ := c.Get(roleKey).(string)
	return r
}

func IsAdmin(c echo.Context) bool {
	return Role(c) == models.RoleAdmin
}
