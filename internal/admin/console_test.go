package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBackend is a mock implementation of the Backend interface
type mockBackend struct {
	products []catalog.Product
	product  catalog.Product
	users    []User
	user     User
	orders   []Order
	order    Order
	stats    Stats
	err      error
}

func (m *mockBackend) Products(context.Context) ([]catalog.Product, error) { return m.products, m.err }
func (m *mockBackend) CreateProduct(context.Context, ProductInput) (catalog.Product, error) {
	return m.product, m.err
}
func (m *mockBackend) UpdateProduct(context.Context, string, ProductInput) (catalog.Product, error) {
	return m.product, m.err
}
func (m *mockBackend) DeleteProduct(context.Context, string) error { return m.err }
func (m *mockBackend) Users(context.Context) ([]User, error)       { return m.users, m.err }
func (m *mockBackend) UpdateUserRole(context.Context, string, Role) (User, error) {
	return m.user, m.err
}
func (m *mockBackend) DeleteUser(context.Context, string) error { return m.err }
func (m *mockBackend) Orders(context.Context) ([]Order, error)  { return m.orders, m.err }
func (m *mockBackend) UpdateOrderStatus(context.Context, string, OrderStatus) (Order, error) {
	return m.order, m.err
}
func (m *mockBackend) Stats(context.Context) (Stats, error) { return m.stats, m.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func productIDs(ps []catalog.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func Test_Console_ProductMutations(t *testing.T) {
	ctx := context.Background()
	backend := &mockBackend{products: []catalog.Product{{ID: "1"}, {ID: "2"}}}
	console := NewConsole(backend, testLogger())
	require.NoError(t, console.LoadProducts(ctx))

	t.Run("create prepends", func(t *testing.T) {
		backend.product = catalog.Product{ID: "3", Name: "New"}
		_, err := console.CreateProduct(ctx, ProductInput{Name: "New"})
		require.NoError(t, err)
		assert.Equal(t, []string{"3", "1", "2"}, productIDs(console.Products.Items()))
	})
	t.Run("update replaces by id", func(t *testing.T) {
		backend.product = catalog.Product{ID: "1", Name: "Renamed"}
		_, err := console.UpdateProduct(ctx, "1", ProductInput{Name: "Renamed"})
		require.NoError(t, err)
		p, ok := console.Products.Get("1")
		require.True(t, ok)
		assert.Equal(t, "Renamed", p.Name)
		assert.Equal(t, []string{"3", "1", "2"}, productIDs(console.Products.Items()))
	})
	t.Run("delete filters by id", func(t *testing.T) {
		require.NoError(t, console.DeleteProduct(ctx, "2"))
		assert.Equal(t, []string{"3", "1"}, productIDs(console.Products.Items()))
	})
}

func Test_Console_FailuresLeaveListsUntouched(t *testing.T) {
	// given
	ctx := context.Background()
	backend := &mockBackend{
		products: []catalog.Product{{ID: "1", Name: "Tee"}},
		users:    []User{{ID: "u1", Role: RoleUser}},
		orders:   []Order{{ID: "o1"}},
	}
	console := NewConsole(backend, testLogger())
	require.NoError(t, console.LoadProducts(ctx))
	require.NoError(t, console.LoadUsers(ctx))
	require.NoError(t, console.LoadOrders(ctx))
	backend.err = errors.New("boom")
	backend.product = catalog.Product{ID: "1", Name: "Should not appear"}

	// when
	_, createErr := console.CreateProduct(ctx, ProductInput{})
	_, updateErr := console.UpdateProduct(ctx, "1", ProductInput{})
	deleteErr := console.DeleteProduct(ctx, "1")
	_, roleErr := console.UpdateUserRole(ctx, "u1", RoleAdmin)
	userErr := console.DeleteUser(ctx, "u1")
	_, orderErr := console.UpdateOrderStatus(ctx, "o1", OrderStatus{})

	// then
	for _, err := range []error{createErr, updateErr, deleteErr, roleErr, userErr, orderErr} {
		assert.Error(t, err)
	}
	p, _ := console.Products.Get("1")
	assert.Equal(t, "Tee", p.Name)
	assert.Equal(t, 1, console.Products.Len())
	u, _ := console.Users.Get("u1")
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, 1, console.Orders.Len())
}

func Test_Console_UpdateUserRoleMerges(t *testing.T) {
	// given
	ctx := context.Background()
	backend := &mockBackend{users: []User{{ID: "u1", Name: "Ann", Email: "ann@example.com", Role: RoleUser}}}
	console := NewConsole(backend, testLogger())
	require.NoError(t, console.LoadUsers(ctx))
	backend.user = User{ID: "u1", Role: RoleAdmin, IsAdmin: true}

	// when
	_, err := console.UpdateUserRole(ctx, "u1", RoleAdmin)

	// then
	require.NoError(t, err)
	u, ok := console.Users.Get("u1")
	require.True(t, ok)
	assert.Equal(t, User{ID: "u1", Name: "Ann", Email: "ann@example.com", Role: RoleAdmin, IsAdmin: true}, u)
}

func Test_Console_Stats(t *testing.T) {
	// given
	backend := &mockBackend{stats: Stats{TotalOrders: 3, TotalUsers: 2}}
	console := NewConsole(backend, testLogger())
	_, ok := console.Stats()
	require.False(t, ok)

	// when
	_, err := console.LoadStats(context.Background())

	// then
	require.NoError(t, err)
	s, ok := console.Stats()
	assert.True(t, ok)
	assert.Equal(t, 3, s.TotalOrders)
}
