package admin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abgdnv/storefront/internal/catalog"
)

// Console holds the admin lists and keeps them in step with the API. Each mutation
// calls the API first and touches the local list only when the call succeeded.
type Console struct {
	backend Backend
	logger  *slog.Logger

	Products Collection[catalog.Product]
	Users    Collection[User]
	Orders   Collection[Order]

	statsMu sync.RWMutex
	stats   *Stats
}

func NewConsole(backend Backend, logger *slog.Logger) *Console {
	return &Console{
		backend: backend,
		logger:  logger.With("component", "admin_console"),
	}
}

func (c *Console) LoadProducts(ctx context.Context) error {
	products, err := c.backend.Products(ctx)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	c.Products.Set(products)
	return nil
}

func (c *Console) CreateProduct(ctx context.Context, in ProductInput) (catalog.Product, error) {
	p, err := c.backend.CreateProduct(ctx, in)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	c.Products.Prepend(p)
	c.logger.InfoContext(ctx, "product created", "product_id", p.ID)
	return p, nil
}

func (c *Console) UpdateProduct(ctx context.Context, id string, in ProductInput) (catalog.Product, error) {
	p, err := c.backend.UpdateProduct(ctx, id, in)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	c.Products.Replace(p)
	return p, nil
}

func (c *Console) DeleteProduct(ctx context.Context, id string) error {
	if err := c.backend.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	c.Products.Remove(id)
	c.logger.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

func (c *Console) LoadUsers(ctx context.Context) error {
	users, err := c.backend.Users(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	c.Users.Set(users)
	return nil
}

// UpdateUserRole merges the returned identity and role fields into the local user.
func (c *Console) UpdateUserRole(ctx context.Context, id string, role Role) (User, error) {
	u, err := c.backend.UpdateUserRole(ctx, id, role)
	if err != nil {
		return User{}, fmt.Errorf("failed to update role of user %s: %w", id, err)
	}
	c.Users.Update(u.ID, func(existing User) User {
		if u.Name != "" {
			existing.Name = u.Name
		}
		if u.Email != "" {
			existing.Email = u.Email
		}
		existing.Role = u.Role
		existing.IsAdmin = u.IsAdmin
		return existing
	})
	return u, nil
}

func (c *Console) DeleteUser(ctx context.Context, id string) error {
	if err := c.backend.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	c.Users.Remove(id)
	return nil
}

func (c *Console) LoadOrders(ctx context.Context) error {
	orders, err := c.backend.Orders(ctx)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}
	c.Orders.Set(orders)
	return nil
}

func (c *Console) UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) (Order, error) {
	o, err := c.backend.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return Order{}, fmt.Errorf("failed to update order %s: %w", id, err)
	}
	c.Orders.Replace(o)
	return o, nil
}

func (c *Console) LoadStats(ctx context.Context) (Stats, error) {
	s, err := c.backend.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	c.statsMu.Lock()
	c.stats = &s
	c.statsMu.Unlock()
	return s, nil
}

// Stats returns the last loaded dashboard stats.
func (c *Console) Stats() (Stats, bool) {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	if c.stats == nil {
		return Stats{}, false
	}
	return *c.stats, true
}
