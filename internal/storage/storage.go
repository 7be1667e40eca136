// Package storage provides the key/value persistence tiers the catalog engine caches into.
//
// Two tiers exist: a session tier that lives as long as the process (Memory) and a
// durable tier that survives restarts (Redis or Postgres). All tiers satisfy Storage.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// ErrQuotaExceeded is returned by Set when the tier has no room left for the value.
var ErrQuotaExceeded = errors.New("storage: quota exceeded")

// Storage is the capability the cache and persisters are written against.
type Storage interface {
	// Get returns the stored bytes or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
