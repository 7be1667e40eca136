package catalogapi

import (
	"slices"
	"sync"
	"time"

	"github.com/abgdnv/storefront/internal/admin"
	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/shopspring/decimal"
)

const recentOrders = 5

// Directory holds the users and orders the admin API manages.
type Directory struct {
	mu     sync.RWMutex
	users  []admin.User
	orders []admin.Order
}

func NewDirectory(users []admin.User, orders []admin.Order) *Directory {
	return &Directory{users: slices.Clone(users), orders: slices.Clone(orders)}
}

func (d *Directory) Users() []admin.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.users)
}

// UpdateUserRole sets role and keeps the isAdmin flag in step with it.
func (d *Directory) UpdateUserRole(id string, role admin.Role) (admin.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := slices.IndexFunc(d.users, func(u admin.User) bool { return u.ID == id })
	if i < 0 {
		return admin.User{}, sferrors.ErrRecordNotFound
	}
	d.users[i].Role = role
	d.users[i].IsAdmin = role == admin.RoleAdmin
	return d.users[i], nil
}

func (d *Directory) DeleteUser(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.users)
	d.users = slices.DeleteFunc(d.users, func(u admin.User) bool { return u.ID == id })
	if len(d.users) == n {
		return sferrors.ErrRecordNotFound
	}
	return nil
}

func (d *Directory) Orders() []admin.Order {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.orders)
}

// UpdateOrderStatus flags the order paid and/or delivered as of now. A status can
// be set but never cleared.
func (d *Directory) UpdateOrderStatus(id string, status admin.OrderStatus, now time.Time) (admin.Order, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := slices.IndexFunc(d.orders, func(o admin.Order) bool { return o.ID == id })
	if i < 0 {
		return admin.Order{}, sferrors.ErrRecordNotFound
	}
	o := &d.orders[i]
	if status.IsPaid != nil && *status.IsPaid {
		o.IsPaid = true
		o.PaidAt = &now
	}
	if status.IsDelivered != nil && *status.IsDelivered {
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
	return *o, nil
}

// Stats aggregates revenue and counts; recent orders are newest first.
func (d *Directory) Stats(totalProducts int) admin.Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	revenue := decimal.Zero
	for _, o := range d.orders {
		revenue = revenue.Add(o.TotalPrice.Decimal)
	}
	recent := slices.Clone(d.orders)
	slices.SortFunc(recent, func(a, b admin.Order) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if len(recent) > recentOrders {
		recent = recent[:recentOrders]
	}

	var stats admin.Stats
	stats.TotalRevenue.Decimal = revenue
	stats.TotalOrders = len(d.orders)
	stats.TotalProducts = totalProducts
	stats.TotalUsers = len(d.users)
	stats.RecentOrders = recent
	return stats
}
