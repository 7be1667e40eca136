// Package cart keeps the shopper's cart lines, consolidated by product, size and color,
// and persists them to the durable storage tier on every change.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

// StorageKey is the durable storage key holding the JSON array of cart lines.
const StorageKey = "cartItems"

// Cart is safe for concurrent use.
type Cart struct {
	mu     sync.Mutex
	store  storage.Storage
	logger *slog.Logger
	items  []Item
	open   bool
}

// New creates a Cart and restores any lines saved in store. A missing or unreadable
// payload yields an empty cart.
func New(ctx context.Context, store storage.Storage, logger *slog.Logger) *Cart {
	c := &Cart{
		store:  store,
		logger: logger.With("component", "cart"),
	}
	c.items = c.restore(ctx)
	return c
}

// Add puts it in the cart. A line with the same key is replaced in place, keeping
// its position; the new quantity wins. Otherwise the line is appended.
// A zero quantity means one.
func (c *Cart) Add(ctx context.Context, it Item) error {
	if it.ID == "" {
		return fmt.Errorf("%w: missing product id", sferrors.ErrInvalidCartItem)
	}
	if it.Qty < 0 {
		return fmt.Errorf("%w: quantity %d", sferrors.ErrInvalidCartItem, it.Qty)
	}
	if it.Qty == 0 {
		it.Qty = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	it = it.clone()
	key := it.Key()
	if i := slices.IndexFunc(c.items, func(x Item) bool { return x.Key() == key }); i >= 0 {
		c.items[i] = it
	} else {
		c.items = append(c.items, it)
	}
	c.persistLocked(ctx)
	return nil
}

// Remove drops the line with key. Removing an absent key is a no-op and writes nothing.
func (c *Cart) Remove(ctx context.Context, key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.items)
	c.items = slices.DeleteFunc(c.items, func(x Item) bool { return x.Key() == key })
	if len(c.items) == n {
		return
	}
	c.persistLocked(ctx)
}

// Clear empties the cart and deletes the storage key.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	if err := c.store.Remove(ctx, StorageKey); err != nil {
		c.logger.WarnContext(ctx, "failed to remove persisted cart", "error", err)
	}
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it.clone())
	}
	return out
}

// Count is the total quantity across lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Qty
	}
	return n
}

// Subtotal is the sum of price times quantity, recomputed on every call.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.Total())
	}
	return sum
}

// LineItems projects the cart for checkout.
func (c *Cart) LineItems() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LineItem, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, lineItem(it))
	}
	return out
}

// Toggle flips the cart panel open state and returns the new state.
func (c *Cart) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = !c.open
	return c.open
}

// IsOpen reports whether the cart panel is open.
func (c *Cart) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Cart) persistLocked(ctx context.Context) {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err == nil {
		err = c.store.Set(ctx, StorageKey, raw)
	}
	if err != nil {
		c.logger.WarnContext(ctx, "failed to persist cart", "items", len(items), "error", err)
	}
}

func (c *Cart) restore(ctx context.Context) []Item {
	raw, err := c.store.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.WarnContext(ctx, "failed to read persisted cart", "error", err)
		}
		return nil
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		c.logger.WarnContext(ctx, "discarding unreadable persisted cart", "error", err)
		return nil
	}
	return items
}
