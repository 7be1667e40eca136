package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/storefront/internal/cache"
	"github.com/abgdnv/storefront/internal/filter"
	"golang.org/x/sync/singleflight"
)

const (
	// TrendingKey caches the home page trending selection.
	TrendingKey = "fec|trending"
	// AllKey caches the whole unfiltered catalog.
	AllKey = "fec|all"

	trendingLimit = 4
)

// Service answers catalog queries from the cache tiers and falls back to the Fetcher on a miss.
// Every network result is written through to the cache before it is returned.
type Service struct {
	fetcher Fetcher
	pages   *cache.Store[PageResult]
	lists   *cache.Store[[]Product]
	group   singleflight.Group
	logger  *slog.Logger
}

// NewService creates a Service. pages is the session tier cache of filtered pages,
// lists the durable tier cache of the trending and whole-catalog lists.
func NewService(fetcher Fetcher, pages *cache.Store[PageResult], lists *cache.Store[[]Product], logger *slog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		pages:   pages,
		lists:   lists,
		logger:  logger.With("component", "catalog_service"),
	}
}

// Page returns page of the catalog under spec. Concurrent misses for the same key
// share one network request; a caller that gives up does not fail the others.
func (s *Service) Page(ctx context.Context, spec filter.Spec, page int) (PageResult, error) {
	key := filter.Encode(spec, page)
	if res, ok := s.pages.Get(ctx, key); ok {
		res.FromCache = true
		if res.Page < 1 {
			res.Page = page
		}
		return res, nil
	}

	v, err := s.shared(ctx, key, func(fctx context.Context) (any, error) {
		res, err := s.fetcher.FetchPage(fctx, spec, page)
		if err != nil {
			return PageResult{}, err
		}
		s.pages.Set(fctx, key, res)
		return res, nil
	})
	if err != nil {
		return PageResult{}, fmt.Errorf("failed to fetch page %d: %w", page, err)
	}
	return v.(PageResult), nil
}

// shared runs fn once per key across concurrent callers. fn gets a context that is
// not cancelled with the first caller; the HTTP client timeout bounds it. Each caller
// stops waiting when its own ctx is done.
func (s *Service) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	fctx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) { return fn(fctx) })
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Shared {
			s.logger.DebugContext(ctx, "request coalesced", "key", key)
		}
		return r.Val, r.Err
	}
}

// Invalidate evicts the cached pages 1 through throughPage of spec.
func (s *Service) Invalidate(ctx context.Context, spec filter.Spec, throughPage int) {
	for p := 1; p <= throughPage; p++ {
		s.pages.Evict(ctx, filter.Encode(spec, p))
	}
}

// InvalidateLists evicts the durable trending and whole-catalog lists.
func (s *Service) InvalidateLists(ctx context.Context) {
	s.lists.Evict(ctx, TrendingKey)
	s.lists.Evict(ctx, AllKey)
}

// Warm refetches the durable lists so the next reader finds them cached.
func (s *Service) Warm(ctx context.Context) error {
	s.InvalidateLists(ctx)
	if _, err := s.All(ctx); err != nil {
		return err
	}
	_, err := s.Trending(ctx)
	return err
}

// Product returns a single product. Product details are not cached.
func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	return s.fetcher.FetchProduct(ctx, id)
}

// Trending returns up to four trending products out of the first catalog page.
func (s *Service) Trending(ctx context.Context) ([]Product, error) {
	return s.list(ctx, TrendingKey, func(all []Product) []Product {
		out := make([]Product, 0, trendingLimit)
		for _, p := range all {
			if !p.IsTrending {
				continue
			}
			out = append(out, p)
			if len(out) == trendingLimit {
				break
			}
		}
		return out
	})
}

// All returns the unfiltered catalog, up to MaxPageSize products.
func (s *Service) All(ctx context.Context) ([]Product, error) {
	return s.list(ctx, AllKey, func(all []Product) []Product { return all })
}

func (s *Service) list(ctx context.Context, key string, pick func([]Product) []Product) ([]Product, error) {
	if products, ok := s.lists.Get(ctx, key); ok {
		return products, nil
	}
	v, err := s.shared(ctx, key, func(fctx context.Context) (any, error) {
		all, err := s.fetcher.FetchCatalog(fctx, MaxPageSize)
		if err != nil {
			return nil, err
		}
		products := pick(all)
		s.lists.Set(fctx, key, products)
		return products, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	return v.([]Product), nil
}
