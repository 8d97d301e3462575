// Package storefront is a Go client for the furniture shop API. Besides the
// plain API calls it keeps an anonymous cart locally and merges it into the
// account's server cart when the shopper signs in.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("storefront: unauthorized")
	ErrForbidden    = errors.New("storefront: forbidden")
	ErrNotFound     = errors.New("storefront: not found")
	ErrValidation   = errors.New("storefront: invalid request")
	ErrConflict     = errors.New("storefront: conflict")
	// ErrAuthRequired is returned for operations that need a signed-in shopper.
	ErrAuthRequired = errors.New("storefront: sign in required")
	// ErrReconcilePending means the local cart could not be merged into the
	// server cart yet. The local cart is kept and the next sign-in retries.
	ErrReconcilePending = errors.New("storefront: cart not yet synced")
)

// APIError is a non-2xx response. It unwraps to the matching sentinel.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storefront: http %d", e.Status)
	}
	return fmt.Sprintf("storefront: http %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	}
	return nil
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.RWMutex
	access  string
	refresh string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetTokens replaces the credentials attached to requests.
func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access, c.refresh = access, refresh
}

func (c *Client) Tokens() (access, refresh string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.access, c.refresh
}

func (c *Client) Authenticated() bool {
	access, _ := c.Tokens()
	return access != ""
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, header http.Header) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if access, _ := c.Tokens(); access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", in, &res, nil); err != nil {
		return nil, err
	}
	c.SetTokens(res.AccessToken, res.RefreshToken)
	return &res, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &res, nil); err != nil {
		return nil, err
	}
	c.SetTokens(res.AccessToken, res.RefreshToken)
	return &res, nil
}

// Refresh rotates the refresh token and stores the new pair.
func (c *Client) Refresh(ctx context.Context) (*AuthResult, error) {
	_, refresh := c.Tokens()
	if refresh == "" {
		return nil, ErrAuthRequired
	}
	var res AuthResult
	body := map[string]string{"refresh_token": refresh}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", body, &res, nil); err != nil {
		return nil, err
	}
	c.SetTokens(res.AccessToken, res.RefreshToken)
	return &res, nil
}

// Logout revokes the refresh token and forgets both tokens, even when the
// server call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, refresh := c.Tokens()
	defer c.SetTokens("", "")
	if refresh == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout", map[string]string{"refresh_token": refresh}, nil, nil)
}

func (c *Client) Me(ctx context.Context) (*Account, error) {
	var acc Account
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &acc, nil); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (c *Client) Products(ctx context.Context, q ProductQuery) (*Page[Product], error) {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("category", q.Category)
	set("material", q.Material)
	set("min_price", q.MinPrice)
	set("max_price", q.MaxPrice)
	set("q", q.Text)
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}

	path := "/api/v1/products"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var page Page[Product]
	if err := c.do(ctx, http.MethodGet, path, nil, &page, nil); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Search(ctx context.Context, text string, page, size int) (*Page[Product], error) {
	v := url.Values{"q": {text}}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		v.Set("size", strconv.Itoa(size))
	}
	var out Page[Product]
	if err := c.do(ctx, http.MethodGet, "/api/v1/products/search?"+v.Encode(), nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Product(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/products/"+id.String(), nil, &p, nil); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Cart(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodGet, "/api/v1/cart", nil, &cart, nil); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddToCart adds quantity to the product's line. A non-empty key makes the
// call safe to retry: the server applies it at most once.
func (c *Client) AddToCart(ctx context.Context, productID uuid.UUID, quantity uint, note, key string) (*AddResult, error) {
	body := map[string]any{"product_id": productID, "quantity": quantity, "note": note}
	var h http.Header
	if key != "" {
		h = http.Header{"Idempotency-Key": {key}}
	}
	var res AddResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/cart", body, &res, h); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateCartItem changes the quantity and/or note of a server cart line.
func (c *Client) UpdateCartItem(ctx context.Context, itemID uuid.UUID, quantity *uint, note *string) (*CartLine, error) {
	body := map[string]any{}
	if quantity != nil {
		body["quantity"] = *quantity
	}
	if note != nil {
		body["note"] = *note
	}
	var line CartLine
	if err := c.do(ctx, http.MethodPatch, "/api/v1/cart/items/"+itemID.String(), body, &line, nil); err != nil {
		return nil, err
	}
	return &line, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/cart/items/"+itemID.String(), nil, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/cart", nil, nil, nil)
}

func (c *Client) Checkout(ctx context.Context, in CheckoutInput) (*Placed, error) {
	var res Placed
	if err := c.do(ctx, http.MethodPost, "/api/v1/orders", in, &res, nil); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Orders(ctx context.Context, page, size int) (*Page[Order], error) {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		v.Set("size", strconv.Itoa(size))
	}
	path := "/api/v1/orders"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out Page[Order]
	if err := c.do(ctx, http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Order(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodGet, "/api/v1/orders/"+id.String(), nil, &o, nil); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) CancelOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodPost, "/api/v1/orders/"+id.String()+"/cancel", nil, &o, nil); err != nil {
		return nil, err
	}
	return &o, nil
}
