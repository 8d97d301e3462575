package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/tokens"
)

var secret = []byte("test-secret")

func newServer() *echo.Echo {
	a := New(secret)
	e := echo.New()
	whoami := func(c echo.Context) error {
		id, ok := AccountID(c)
		if !ok {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, id.String()+":"+Role(c))
	}
	e.GET("/me", whoami, a.RequireAuth())
	e.GET("/maybe", whoami, a.Optional())
	e.GET("/admin", whoami, a.RequireAuth(), RequireAdmin)
	return e
}

func token(t *testing.T, id uuid.UUID, role string, exp time.Time) string {
	t.Helper()
	s, err := tokens.SignAccess(secret, id.String(), role, exp)
	require.NoError(t, err)
	return s
}

func do(e *echo.Echo, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()
	e := newServer()
	id := uuid.New()

	tests := []struct {
		name   string
		mutate func(*http.Request)
		status int
		body   string
	}{
		{"missing", nil, http.StatusUnauthorized, ""},
		{"bearer", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token(t, id, models.RoleCustomer, time.Now().Add(time.Minute)))
		}, http.StatusOK, id.String() + ":customer"},
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: tokens.AccessCookie, Value: token(t, id, models.RoleCustomer, time.Now().Add(time.Minute))})
		}, http.StatusOK, id.String() + ":customer"},
		{"expired", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token(t, id, models.RoleCustomer, time.Now().Add(-time.Minute)))
		}, http.StatusUnauthorized, ""},
		{"garbage", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not.a.jwt")
		}, http.StatusUnauthorized, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, "/me", tc.mutate)
			assert.Equal(t, tc.status, rec.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, rec.Body.String())
			}
		})
	}
}

func TestOptional(t *testing.T) {
	t.Parallel()
	e := newServer()
	id := uuid.New()

	rec := do(e, "/maybe", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = do(e, "/maybe", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token(t, id, models.RoleAdmin, time.Now().Add(time.Minute)))
	})
	assert.Equal(t, id.String()+":admin", rec.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()
	e := newServer()

	rec := do(e, "/admin", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token(t, uuid.New(), models.RoleCustomer, time.Now().Add(time.Minute)))
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, "/admin", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token(t, uuid.New(), models.RoleAdmin, time.Now().Add(time.Minute)))
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}
