// Package admin is the back-office side of the storefront: API calls for products,
// users and orders and the local lists they keep up to date.
package admin

import (
	"slices"
	"sync"
)

// Identifiable is anything with an opaque string identity.
type Identifiable interface {
	GetID() string
}

// Collection is a locally held admin list. Mutations are applied only after the
// corresponding API call succeeded.
type Collection[T Identifiable] struct {
	mu    sync.RWMutex
	items []T
}

// Set replaces the whole list, e.g. after a fetch.
func (c *Collection[T]) Set(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.Clone(items)
}

// Prepend puts a newly created record first.
func (c *Collection[T]) Prepend(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.Insert(c.items, 0, item)
}

// Replace swaps the record with item's id for item. It reports whether one was found.
func (c *Collection[T]) Replace(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(item.GetID())
	if i < 0 {
		return false
	}
	c.items[i] = item
	return true
}

// Update applies fn to the record with id. It reports whether one was found.
func (c *Collection[T]) Update(id string, fn func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return false
	}
	c.items[i] = fn(c.items[i])
	return true
}

// Remove drops the record with id. It reports whether one was found.
func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.items)
	c.items = slices.DeleteFunc(c.items, func(x T) bool { return x.GetID() == id })
	return len(c.items) != n
}

// Get returns the record with id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Items returns a copy of the list.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) indexLocked(id string) int {
	return slices.IndexFunc(c.items, func(x T) bool { return x.GetID() == id })
}
