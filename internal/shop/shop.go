// Package shop wires the catalog engine together for the presentation layer:
// a filter change resets the listing, is remembered for the next visit and loads page one.
package shop

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abgdnv/storefront/internal/analytics"
	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/filter"
	"github.com/abgdnv/storefront/internal/pagination"
)

// Catalog is the read side of the catalog, normally catalog.Service.
type Catalog interface {
	pagination.PageSource
	Product(ctx context.Context, id string) (catalog.Product, error)
	Trending(ctx context.Context) ([]catalog.Product, error)
}

type Shop struct {
	catalog  Catalog
	pager    *pagination.Controller
	prefs    *filter.Preferences
	cart     *cart.Cart
	recorder *analytics.Recorder
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	explicit bool
}

func New(cat Catalog, prefs *filter.Preferences, c *cart.Cart, recorder *analytics.Recorder, logger *slog.Logger) *Shop {
	return &Shop{
		catalog:  cat,
		pager:    pagination.NewController(cat, logger),
		prefs:    prefs,
		cart:     c,
		recorder: recorder,
		logger:   logger.With("component", "shop"),
		now:      time.Now,
	}
}

// Start seeds the active filter from the saved preferences and loads the first page.
// Saved preferences never replace a filter the shopper already applied.
func (s *Shop) Start(ctx context.Context) (pagination.State, error) {
	s.mu.Lock()
	explicit := s.explicit
	s.mu.Unlock()

	if !explicit {
		spec := s.prefs.Load(ctx)
		if s.pager.SetFilter(spec) {
			s.logger.InfoContext(ctx, "restored saved filter", "generation", s.pager.Generation())
		}
	}
	return s.loadFirst(ctx)
}

// ApplyFilter makes spec the active filter, saves it and loads its first page.
// Applying the active filter again is a no-op.
func (s *Shop) ApplyFilter(ctx context.Context, spec filter.Spec) (pagination.State, error) {
	if err := spec.Validate(); err != nil {
		return s.pager.Snapshot(), err
	}
	s.mu.Lock()
	s.explicit = true
	s.mu.Unlock()

	if !s.pager.SetFilter(spec) {
		return s.pager.Snapshot(), nil
	}
	s.prefs.Save(ctx, spec)
	s.recorder.Record(ctx, analytics.NewFilterApplied(spec.Canonical(), s.pager.Generation(), s.now()))
	return s.loadFirst(ctx)
}

// LoadMore loads the next page of the active filter.
func (s *Shop) LoadMore(ctx context.Context) (pagination.State, error) {
	_, err := s.pager.LoadNextPage(ctx)
	return s.pager.Snapshot(), err
}

// Refresh drops the cached pages of the active filter and reloads page one.
func (s *Shop) Refresh(ctx context.Context) (pagination.State, error) {
	_, err := s.pager.Refresh(ctx)
	return s.pager.Snapshot(), err
}

// Listing returns the current catalog listing.
func (s *Shop) Listing() pagination.State {
	return s.pager.Snapshot()
}

// DismissError clears the listing error after the shopper acknowledged it.
func (s *Shop) DismissError() {
	s.pager.ClearError()
}

func (s *Shop) Product(ctx context.Context, id string) (catalog.Product, error) {
	return s.catalog.Product(ctx, id)
}

func (s *Shop) Trending(ctx context.Context) ([]catalog.Product, error) {
	return s.catalog.Trending(ctx)
}

// Cart exposes the read side of the cart.
func (s *Shop) Cart() *cart.Cart {
	return s.cart
}

// AddToCart adds product in the chosen variant. A repeat add of the same variant sets its quantity.
func (s *Shop) AddToCart(ctx context.Context, product catalog.Product, size string, color catalog.Color, qty int) error {
	it := cart.Item{Product: product, SelectedSize: size, SelectedColor: color, Qty: qty}
	if err := s.cart.Add(ctx, it); err != nil {
		return fmt.Errorf("failed to add %s to cart: %w", product.ID, err)
	}
	s.recordCart(ctx, analytics.CartAdded, it.Key(), max(qty, 1))
	return nil
}

func (s *Shop) RemoveFromCart(ctx context.Context, key cart.Key) {
	s.cart.Remove(ctx, key)
	s.recordCart(ctx, analytics.CartRemoved, key, 0)
}

// ClearCart empties the cart, e.g. after a completed purchase.
func (s *Shop) ClearCart(ctx context.Context) {
	s.cart.Clear(ctx)
	s.recordCart(ctx, analytics.CartCleared, cart.Key{}, 0)
}

func (s *Shop) loadFirst(ctx context.Context) (pagination.State, error) {
	if _, err := s.pager.LoadNextPage(ctx); err != nil {
		return s.pager.Snapshot(), err
	}
	return s.pager.Snapshot(), nil
}

func (s *Shop) recordCart(ctx context.Context, action analytics.CartAction, key cart.Key, qty int) {
	s.recorder.Record(ctx, analytics.NewCartUpdated(action, key.ProductID, key.Size, key.ColorName, qty,
		len(s.cart.Items()), s.cart.Subtotal().StringFixed(2), s.now()))
}
