package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrValidation},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusServiceUnavailable, nil},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "nope"})
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).Product(context.Background(), uuid.New())
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, "nope", apiErr.Message)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			} else {
				assert.NoError(t, apiErr.Unwrap())
			}
		})
	}
}

func TestClientSendsTokenAndIdempotencyKey(t *testing.T) {
	t.Parallel()
	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"applied":true,"cart":{"items":[],"item_count":0,"subtotal":"0"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	assert.False(t, c.Authenticated())
	c.SetTokens("acc", "ref")
	assert.True(t, c.Authenticated())

	res, err := c.AddToCart(context.Background(), uuid.New(), 1, "", "key-1")
	require.NoError(t, err)
	assert.True(t, res.Applied)
	h := <-headers
	assert.Equal(t, "Bearer acc", h.Get("Authorization"))
	assert.Equal(t, "key-1", h.Get("Idempotency-Key"))
}

func TestClientLogoutForgetsTokens(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetTokens("acc", "ref")
	assert.Error(t, c.Logout(context.Background()))
	access, refresh := c.Tokens()
	assert.Empty(t, access)
	assert.Empty(t, refresh)

	_, err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrAuthRequired)
}
