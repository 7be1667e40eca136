package shop

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/abgdnv/storefront/internal/analytics"
	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/catalog"
	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/filter"
	"github.com/abgdnv/storefront/internal/storage"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCatalog is a mock implementation of the Catalog interface.
// It serves one product per page whose id encodes the department and page.
type mockCatalog struct {
	mu    sync.Mutex
	specs []filter.Spec
}

func (m *mockCatalog) Page(_ context.Context, spec filter.Spec, page int) (catalog.PageResult, error) {
	m.mu.Lock()
	m.specs = append(m.specs, spec)
	m.mu.Unlock()
	id := spec.Department + "-" + string(rune('0'+page))
	return catalog.PageResult{Products: []catalog.Product{{ID: id}}, Page: page, TotalCount: 2, HasMore: page < 2}, nil
}

func (m *mockCatalog) Invalidate(context.Context, filter.Spec, int) {}

func (m *mockCatalog) Product(_ context.Context, id string) (catalog.Product, error) {
	return catalog.Product{ID: id}, nil
}

func (m *mockCatalog) Trending(context.Context) ([]catalog.Product, error) {
	return []catalog.Product{{ID: "t1", IsTrending: true}}, nil
}

// mockPublisher is a mock implementation of the messaging.Publisher interface
type mockPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
}

func (m *mockPublisher) Publish(_ context.Context, e messaging.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *mockPublisher) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Subject())
	}
	return out
}

type fixture struct {
	shop    *Shop
	catalog *mockCatalog
	durable *storage.Memory
	pub     *mockPublisher
	prefs   *filter.Preferences
}

func newFixture(t *testing.T, seed func(*filter.Preferences)) fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	durable := storage.NewMemory(0)
	prefs := filter.NewPreferences(durable, logger)
	if seed != nil {
		seed(prefs)
	}
	cat := &mockCatalog{}
	pub := &mockPublisher{}
	s := New(cat, prefs, cart.New(ctx, durable, logger), analytics.NewRecorder(pub, logger), logger)
	return fixture{shop: s, catalog: cat, durable: durable, pub: pub, prefs: prefs}
}

func listingIDs(products []catalog.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func Test_Shop_StartRestoresSavedFilter(t *testing.T) {
	// given
	f := newFixture(t, func(p *filter.Preferences) {
		p.Save(context.Background(), filter.Spec{Department: "Women"})
	})

	// when
	state, err := f.shop.Start(context.Background())

	// then
	require.NoError(t, err)
	assert.Equal(t, "Women", state.Filter.Department)
	assert.Equal(t, []string{"Women-1"}, listingIDs(state.Products))
	assert.Empty(t, f.pub.subjects(), "restoring is not an applied filter")
}

func Test_Shop_StartWithoutPreferences(t *testing.T) {
	f := newFixture(t, nil)

	state, err := f.shop.Start(context.Background())

	require.NoError(t, err)
	assert.True(t, state.Filter.IsZero())
	assert.Equal(t, []string{"-1"}, listingIDs(state.Products))
}

func Test_Shop_ApplyFilter(t *testing.T) {
	// given
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.shop.Start(ctx)
	require.NoError(t, err)
	_, err = f.shop.LoadMore(ctx)
	require.NoError(t, err)

	// when
	state, err := f.shop.ApplyFilter(ctx, filter.Spec{Department: "Kids"})

	// then
	require.NoError(t, err)
	assert.Equal(t, []string{"Kids-1"}, listingIDs(state.Products))
	assert.Equal(t, 1, state.CurrentPage)
	assert.Equal(t, "Kids", f.prefs.Load(ctx).Department)
	assert.Equal(t, []string{analytics.FilterAppliedSubject}, f.pub.subjects())
}

func Test_Shop_ApplySameFilterIsNoop(t *testing.T) {
	// given
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.shop.ApplyFilter(ctx, filter.Spec{Sizes: []string{"S", "M"}})
	require.NoError(t, err)
	_, err = f.shop.LoadMore(ctx)
	require.NoError(t, err)

	// when
	state, err := f.shop.ApplyFilter(ctx, filter.Spec{Sizes: []string{"M", "S"}})

	// then
	require.NoError(t, err)
	assert.Len(t, state.Products, 2)
	assert.Len(t, f.pub.subjects(), 1)
}

func Test_Shop_ApplyInvalidFilter(t *testing.T) {
	// given
	ctx := context.Background()
	f := newFixture(t, nil)

	// when
	_, err := f.shop.ApplyFilter(ctx, filter.Spec{Department: "Pets"})

	// then
	assert.ErrorIs(t, err, sferrors.ErrInvalidFilter)
	assert.True(t, f.prefs.Load(ctx).IsZero())
	assert.Empty(t, f.catalog.specs)
}

func Test_Shop_StartKeepsExplicitFilter(t *testing.T) {
	// given
	ctx := context.Background()
	f := newFixture(t, func(p *filter.Preferences) {
		p.Save(context.Background(), filter.Spec{Department: "Women"})
	})
	_, err := f.shop.ApplyFilter(ctx, filter.Spec{Department: "Men"})
	require.NoError(t, err)

	// when
	state, err := f.shop.Start(ctx)

	// then
	require.NoError(t, err)
	assert.Equal(t, "Men", state.Filter.Department)
}

func Test_Shop_CartPublishesEvents(t *testing.T) {
	// given
	ctx := context.Background()
	f := newFixture(t, nil)
	product := catalog.Product{ID: "A", Price: catalog.NewMoney("10")}
	red := catalog.Color{Name: "Red", Hex: "#FF0000"}

	// when
	require.NoError(t, f.shop.AddToCart(ctx, product, "M", red, 1))
	require.NoError(t, f.shop.AddToCart(ctx, product, "M", red, 3))
	f.shop.RemoveFromCart(ctx, cart.Key{ProductID: "A", Size: "M", ColorName: "Red"})
	f.shop.ClearCart(ctx)

	// then
	assert.Equal(t, []string{
		analytics.CartUpdatedSubject,
		analytics.CartUpdatedSubject,
		analytics.CartUpdatedSubject,
		analytics.CartUpdatedSubject,
	}, f.pub.subjects())
	second := f.pub.events[1].(analytics.CartUpdatedEvent)
	assert.Equal(t, analytics.CartAdded, second.Action)
	assert.Equal(t, 3, second.Qty)
	assert.Equal(t, 1, second.Lines)
	assert.Equal(t, "30.00", second.Subtotal)
	assert.Empty(t, f.shop.Cart().Items())
}

func Test_Shop_AddToCartRejectsInvalidItem(t *testing.T) {
	f := newFixture(t, nil)

	err := f.shop.AddToCart(context.Background(), catalog.Product{}, "M", catalog.Color{Name: "Red"}, 1)

	assert.ErrorIs(t, err, sferrors.ErrInvalidCartItem)
	assert.Empty(t, f.pub.subjects())
}

func Test_Shop_Passthrough(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	p, err := f.shop.Product(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "42", p.ID)

	trending, err := f.shop.Trending(ctx)
	require.NoError(t, err)
	assert.Len(t, trending, 1)
}
