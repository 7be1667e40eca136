package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abgdnv/storefront/internal/catalog"
	sferrors "github.com/abgdnv/storefront/internal/errors"
)

const maxBodyBytes = 8 << 20

// Backend is the admin API.
type Backend interface {
	Products(ctx context.Context) ([]catalog.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	Users(ctx context.Context) ([]User, error)
	UpdateUserRole(ctx context.Context, id string, role Role) (User, error)
	DeleteUser(ctx context.Context, id string) error

	Orders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) (Order, error)

	Stats(ctx context.Context) (Stats, error)
}

var _ Backend = (*Client)(nil)

// Client calls the /admin endpoints as the session's user.
// Mutations are not idempotent and are never retried.
type Client struct {
	baseURL string
	http    *http.Client
	session Session
	logger  *slog.Logger
}

// NewClient creates a Client for the API rooted at baseURL, e.g. http://localhost:5001/api.
func NewClient(baseURL string, timeout time.Duration, session Session, logger *slog.Logger) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		baseURL: baseURL + "/admin",
		http:    &http.Client{Timeout: timeout},
		session: session,
		logger:  logger.With("component", "admin_client"),
	}
}

func (c *Client) Products(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	return out, c.call(ctx, http.MethodGet, "/products", nil, &out)
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (catalog.Product, error) {
	var out catalog.Product
	return out, c.call(ctx, http.MethodPost, "/products", in, &out)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (catalog.Product, error) {
	var out catalog.Product
	return out, c.call(ctx, http.MethodPut, "/products/"+url.PathEscape(id), in, &out)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out []User
	return out, c.call(ctx, http.MethodGet, "/users", nil, &out)
}

func (c *Client) UpdateUserRole(ctx context.Context, id string, role Role) (User, error) {
	var out User
	body := map[string]Role{"role": role}
	return out, c.call(ctx, http.MethodPut, "/users/"+url.PathEscape(id)+"/role", body, &out)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var out []Order
	return out, c.call(ctx, http.MethodGet, "/orders", nil, &out)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) (Order, error) {
	var out Order
	return out, c.call(ctx, http.MethodPut, "/orders/"+url.PathEscape(id)+"/status", status, &out)
}

func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	return out, c.call(ctx, http.MethodGet, "/dashboard/stats", nil, &out)
}

// call sends in as JSON and decodes a 2xx response into out when out is not nil.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	if c.session.Token == "" {
		return fmt.Errorf("%w: no session token", sferrors.ErrUnauthorized)
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.session.Token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", sferrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", sferrors.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &sferrors.ServerError{Status: resp.StatusCode, Message: message(raw)}
		c.logger.DebugContext(ctx, "admin call rejected", "method", method, "path", path, "status", resp.StatusCode)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return errors.Join(sferrors.ErrUnauthorized, se)
		}
		if resp.StatusCode == http.StatusNotFound {
			return errors.Join(sferrors.ErrRecordNotFound, se)
		}
		return se
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func message(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		return body.Message
	}
	return ""
}
