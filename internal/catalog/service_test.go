package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/cache"
	"github.com/abgdnv/storefront/internal/filter"
	"github.com/abgdnv/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockFetcher is a mock implementation of the Fetcher interface
type mockFetcher struct {
	page    PageResult
	product Product
	catalog []Product
	err     error
	calls   atomic.Int32
	block   chan struct{}
	entered chan struct{}
}

func (m *mockFetcher) FetchPage(ctx context.Context, _ filter.Spec, _ int) (PageResult, error) {
	m.calls.Add(1)
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return PageResult{}, ctx.Err()
		}
	}
	return m.page, m.err
}

func (m *mockFetcher) FetchProduct(_ context.Context, _ string) (Product, error) {
	m.calls.Add(1)
	return m.product, m.err
}

func (m *mockFetcher) FetchCatalog(_ context.Context, _ int) ([]Product, error) {
	m.calls.Add(1)
	return m.catalog, m.err
}

func productIDs(products []Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func newTestService(f Fetcher) (*Service, *storage.Memory, *storage.Memory) {
	session := storage.NewMemory(0)
	durable := storage.NewMemory(0)
	svc := NewService(f,
		cache.New[PageResult](session, 15*time.Minute),
		cache.New[[]Product](durable, 30*time.Minute),
		testLogger())
	return svc, session, durable
}

func Test_Service_Page_WritesThroughAndServesFromCache(t *testing.T) {
	// given
	ctx := context.Background()
	fetcher := &mockFetcher{page: PageResult{Products: []Product{{ID: "p1"}}, Page: 1, TotalCount: 1}}
	svc, session, _ := newTestService(fetcher)
	spec := filter.Spec{Department: "Men"}

	// when
	first, err := svc.Page(ctx, spec, 1)
	require.NoError(t, err)
	second, err := svc.Page(ctx, spec, 1)
	require.NoError(t, err)

	// then
	assert.Equal(t, int32(1), fetcher.calls.Load(), "cached page must not be fetched again")
	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, productIDs(first.Products), productIDs(second.Products))
	_, err = session.Get(ctx, filter.Encode(spec, 1))
	assert.NoError(t, err)
}

func Test_Service_Page_ErrorsAreNotCached(t *testing.T) {
	// given
	ctx := context.Background()
	fetcher := &mockFetcher{err: errors.New("boom")}
	svc, session, _ := newTestService(fetcher)

	// when
	_, err := svc.Page(ctx, filter.Spec{}, 1)

	// then
	require.Error(t, err)
	assert.Equal(t, 0, session.Len())
}

func Test_Service_Page_KeyIgnoresSetOrder(t *testing.T) {
	// given
	ctx := context.Background()
	fetcher := &mockFetcher{page: PageResult{Page: 1}}
	svc, _, _ := newTestService(fetcher)

	// when
	_, err := svc.Page(ctx, filter.Spec{Sizes: []string{"S", "M"}}, 1)
	require.NoError(t, err)
	res, err := svc.Page(ctx, filter.Spec{Sizes: []string{"M", "S"}}, 1)
	require.NoError(t, err)

	// then
	assert.True(t, res.FromCache)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func Test_Service_Page_CoalescesConcurrentMisses(t *testing.T) {
	// given
	ctx := context.Background()
	fetcher := &mockFetcher{
		page:    PageResult{Page: 1},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 2),
	}
	svc, _, _ := newTestService(fetcher)

	// when
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Page(ctx, filter.Spec{}, 1)
			assert.NoError(t, err)
		}()
	}
	<-fetcher.entered
	time.Sleep(50 * time.Millisecond)
	close(fetcher.block)
	wg.Wait()

	// then
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func Test_Service_Page_CancelledCallerDoesNotFailOthers(t *testing.T) {
	// given
	fetcher := &mockFetcher{
		page:    PageResult{Page: 1, Products: []Product{{ID: "p1"}}},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 2),
	}
	svc, _, _ := newTestService(fetcher)
	firstCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		res PageResult
		err error
	}
	first := make(chan error, 1)
	second := make(chan result, 1)
	go func() {
		_, err := svc.Page(firstCtx, filter.Spec{}, 1)
		first <- err
	}()
	<-fetcher.entered
	go func() {
		res, err := svc.Page(context.Background(), filter.Spec{}, 1)
		second <- result{res: res, err: err}
	}()
	time.Sleep(50 * time.Millisecond)

	// when
	cancel()
	firstErr := <-first
	close(fetcher.block)
	got := <-second

	// then
	assert.ErrorIs(t, firstErr, context.Canceled)
	require.NoError(t, got.err)
	assert.Equal(t, []string{"p1"}, productIDs(got.res.Products))
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func Test_Service_Invalidate(t *testing.T) {
	// given
	ctx := context.Background()
	fetcher := &mockFetcher{page: PageResult{Page: 1}}
	svc, session, _ := newTestService(fetcher)
	spec := filter.Spec{Category: "Shoes"}
	for p := 1; p <= 3; p++ {
		_, err := svc.Page(ctx, spec, p)
		require.NoError(t, err)
	}
	require.Equal(t, 3, session.Len())

	// when
	svc.Invalidate(ctx, spec, 2)

	// then
	assert.Equal(t, 1, session.Len())
	_, err := session.Get(ctx, filter.Encode(spec, 3))
	assert.NoError(t, err)
}

func Test_Service_Trending(t *testing.T) {
	// given
	ctx := context.Background()
	fetcher := &mockFetcher{catalog: []Product{
		{ID: "1", IsTrending: true},
		{ID: "2"},
		{ID: "3", IsTrending: true},
		{ID: "4", IsTrending: true},
		{ID: "5", IsTrending: true},
		{ID: "6", IsTrending: true},
	}}
	svc, _, durable := newTestService(fetcher)

	// when
	trending, err := svc.Trending(ctx)
	require.NoError(t, err)
	again, err := svc.Trending(ctx)
	require.NoError(t, err)

	// then
	assert.Equal(t, []string{"1", "3", "4", "5"}, productIDs(trending))
	assert.Equal(t, productIDs(trending), productIDs(again))
	assert.Equal(t, int32(1), fetcher.calls.Load())
	_, err = durable.Get(ctx, TrendingKey)
	assert.NoError(t, err)
}

func Test_Service_All(t *testing.T) {
	// given
	ctx := context.Background()
	fetcher := &mockFetcher{catalog: []Product{{ID: "1"}, {ID: "2"}}}
	svc, _, durable := newTestService(fetcher)

	// when
	all, err := svc.All(ctx)

	// then
	require.NoError(t, err)
	assert.Len(t, all, 2)
	_, err = durable.Get(ctx, AllKey)
	assert.NoError(t, err)
}

func Test_Service_Product(t *testing.T) {
	fetcher := &mockFetcher{product: Product{ID: "7", Name: "Boots"}}
	svc, _, _ := newTestService(fetcher)

	p, err := svc.Product(context.Background(), "7")

	require.NoError(t, err)
	assert.Equal(t, "Boots", p.Name)
}

func Test_Service_WarmRefreshesLists(t *testing.T) {
	// given
	ctx := context.Background()
	fetcher := &mockFetcher{catalog: []Product{{ID: "a", IsTrending: true}, {ID: "b"}}}
	svc, _, durable := newTestService(fetcher)
	_, err := svc.All(ctx)
	require.NoError(t, err)
	fetcher.catalog = []Product{{ID: "a"}, {ID: "b", IsTrending: true}, {ID: "c"}}

	// when
	err = svc.Warm(ctx)

	// then
	require.NoError(t, err)
	all, err := svc.All(ctx)
	require.NoError(t, err)
	trending, err := svc.Trending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, productIDs(all))
	assert.Equal(t, []string{"b"}, productIDs(trending))
	assert.Equal(t, int32(3), fetcher.calls.Load(), "warm fetches both lists once, later reads hit the cache")
	assert.Equal(t, 2, durable.Len())
}

func Test_Service_InvalidateLists(t *testing.T) {
	// given
	ctx := context.Background()
	fetcher := &mockFetcher{catalog: []Product{{ID: "a", IsTrending: true}}}
	svc, _, durable := newTestService(fetcher)
	_, err := svc.Trending(ctx)
	require.NoError(t, err)
	_, err = svc.All(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, durable.Len())

	// when
	svc.InvalidateLists(ctx)

	// then
	assert.Equal(t, 0, durable.Len())
}
