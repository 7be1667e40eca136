package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/cache"
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/catalogapi"
	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/filter"
	"github.com/abgdnv/storefront/internal/storage"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCatalogServer serves the seeded reference catalog and returns its API base URL.
func newCatalogServer(t *testing.T) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := catalogapi.NewHandler(
		catalogapi.NewInMemoryStore(catalogapi.SeedProducts()),
		catalogapi.NewDirectory(nil, nil),
		catalogapi.NewTokenMaker("0123456789abcdef0123456789abcdef", "catalogd"),
		nil,
		logger,
	)
	mux := server.NewChiRouter(logger, "catalogd", nil)
	h.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func newClient(baseURL string, pageSize int) *catalog.Client {
	res := config.ResilienceConfig{
		Retry:          config.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
		CircuitBreaker: config.CircuitBreakerConfig{ConsecutiveFailures: 10, OpenTimeout: time.Minute},
	}
	return catalog.NewClient(baseURL, time.Second, res, slog.New(slog.NewTextHandler(io.Discard, nil)), catalog.WithPageSize(pageSize))
}

func productIDs(products []catalog.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func Test_Client_AgainstCatalogAPI_Pages(t *testing.T) {
	// given
	client := newClient(newCatalogServer(t), 2)
	spec := filter.Spec{Sizes: []string{"S"}}

	// when
	first, err := client.FetchPage(context.Background(), spec, 1)
	require.NoError(t, err)
	last, err := client.FetchPage(context.Background(), spec, 3)
	require.NoError(t, err)
	beyond, err := client.FetchPage(context.Background(), spec, 4)
	require.NoError(t, err)

	// then
	assert.Equal(t, []string{"1", "3"}, productIDs(first.Products))
	assert.Equal(t, 5, first.TotalCount)
	assert.True(t, first.HasMore)
	assert.Equal(t, []string{"6"}, productIDs(last.Products))
	assert.False(t, last.HasMore)
	assert.Empty(t, beyond.Products)
	assert.False(t, beyond.HasMore)
}

func Test_Client_AgainstCatalogAPI_Product(t *testing.T) {
	// given
	client := newClient(newCatalogServer(t), catalog.DefaultPageSize)

	// when
	p, err := client.FetchProduct(context.Background(), "3")
	require.NoError(t, err)
	_, missingErr := client.FetchProduct(context.Background(), "nope")

	// then
	assert.Equal(t, "Floral Summer Dress", p.Name)
	assert.ErrorIs(t, missingErr, sferrors.ErrProductNotFound)
}

func Test_Service_AgainstCatalogAPI_Trending(t *testing.T) {
	// given
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := newClient(newCatalogServer(t), catalog.DefaultPageSize)
	pages := cache.New[catalog.PageResult](storage.NewMemory(0), 15*time.Minute)
	lists := cache.New[[]catalog.Product](storage.NewMemory(0), 30*time.Minute)
	svc := catalog.NewService(client, pages, lists, logger)

	// when
	trending, err := svc.Trending(context.Background())
	require.NoError(t, err)
	all, err := svc.All(context.Background())
	require.NoError(t, err)

	// then
	assert.Equal(t, []string{"1", "3"}, productIDs(trending))
	assert.Len(t, all, 6)
	cached, ok := lists.Get(context.Background(), catalog.TrendingKey)
	require.True(t, ok)
	assert.Equal(t, []string{"1", "3"}, productIDs(cached))
}
