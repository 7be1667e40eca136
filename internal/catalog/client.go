package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/filter"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

const (
	// DefaultPageSize is the number of products requested per page.
	DefaultPageSize = 12
	// MaxPageSize is the largest page the API serves.
	MaxPageSize = 48

	maxResponseBytes = 8 << 20
	maxErrorBytes    = 64 << 10
)

// Fetcher issues catalog requests over the network.
type Fetcher interface {
	// FetchPage returns one page of the catalog under spec.
	FetchPage(ctx context.Context, spec filter.Spec, page int) (PageResult, error)
	// FetchProduct returns a single product or ErrProductNotFound.
	FetchProduct(ctx context.Context, id string) (Product, error)
	// FetchCatalog returns up to limit products with no filter applied.
	FetchCatalog(ctx context.Context, limit int) ([]Product, error)
}

var _ Fetcher = (*Client)(nil)

// Client is the HTTP Fetcher. Transport failures and 5xx responses are retried with
// exponential backoff behind a circuit breaker. Other 4xx responses fail immediately.
type Client struct {
	baseURL  string
	http     *http.Client
	pageSize int
	retry    config.RetryConfig
	breaker  *gobreaker.CircuitBreaker[[]byte]
	logger   *slog.Logger
	metrics  *Metrics
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithPageSize sets the limit sent with page requests.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 && n <= MaxPageSize {
			c.pageSize = n
		}
	}
}

// WithClientMetrics records request latency.
func WithClientMetrics(m *Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client for the API rooted at baseURL, e.g. http://localhost:5001/api.
func NewClient(baseURL string, timeout time.Duration, res config.ResilienceConfig, logger *slog.Logger, opts ...ClientOption) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	c := &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		pageSize: DefaultPageSize,
		retry:    res.Retry,
		logger:   logger.With("component", "catalog_client"),
	}
	c.breaker = newBreaker(res.CircuitBreaker, c.logger)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FetchPage(ctx context.Context, spec filter.Spec, page int) (PageResult, error) {
	if page < 1 {
		page = 1
	}
	q := filter.Values(spec)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(c.pageSize))

	body, err := c.get(ctx, "page", "/products", q)
	if err != nil {
		return PageResult{}, err
	}
	res, err := decodePage(body, page, c.pageSize)
	if err != nil {
		return PageResult{}, fmt.Errorf("failed to decode page %d: %w", page, err)
	}
	return res, nil
}

func (c *Client) FetchProduct(ctx context.Context, id string) (Product, error) {
	body, err := c.get(ctx, "product", "/products/"+url.PathEscape(id), nil)
	if err != nil {
		var se *sferrors.ServerError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return Product{}, fmt.Errorf("%w: %s", sferrors.ErrProductNotFound, id)
		}
		return Product{}, err
	}
	var p Product
	if err := json.Unmarshal(body, &p); err != nil {
		return Product{}, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	return p, nil
}

func (c *Client) FetchCatalog(ctx context.Context, limit int) ([]Product, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "catalog", "/products", q)
	if err != nil {
		return nil, err
	}
	res, err := decodePage(body, 1, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return res.Products, nil
}

// get performs a GET with retry and circuit breaking and returns the 2xx body.
func (c *Client) get(ctx context.Context, op, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	start := time.Now()
	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		body, err := c.breaker.Execute(func() ([]byte, error) {
			return c.do(ctx, u)
		})
		if err == nil {
			return body, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, backoff.Permanent(fmt.Errorf("%w: %w", sferrors.ErrNetwork, err))
		}
		if ctx.Err() != nil || !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "catalog request failed, retrying",
			"url", u, "attempt", attempt, "backoff", wait, "error", err)
	}

	body, err := backoff.RetryNotifyWithData(operation, c.newBackOff(ctx), notify)
	c.metrics.observe(op, err, time.Since(start))
	if err != nil {
		c.logger.DebugContext(ctx, "catalog request failed", "url", u, "attempts", attempt, "error", err)
		return nil, err
	}
	return body, nil
}

// do performs a single GET.
func (c *Client) do(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sferrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return nil, &sferrors.ServerError{Status: resp.StatusCode, Message: serverMessage(raw)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", sferrors.ErrNetwork, err)
	}
	return body, nil
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.InitialBackoff
	if c.retry.MaxBackoff > 0 {
		b.MaxInterval = c.retry.MaxBackoff
	}
	b.MaxElapsedTime = 0

	var bo backoff.BackOff = b
	if c.retry.MaxAttempts > 0 {
		bo = backoff.WithMaxRetries(bo, uint64(c.retry.MaxAttempts-1))
	}
	return backoff.WithContext(bo, ctx)
}

// serverMessage extracts {"message": "..."} from an error body.
func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return ""
}

func retryable(err error) bool {
	if errors.Is(err, sferrors.ErrNetwork) {
		return true
	}
	var se *sferrors.ServerError
	return errors.As(err, &se) && se.Temporary()
}
