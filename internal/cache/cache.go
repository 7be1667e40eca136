// Package cache implements a TTL-bounded typed cache on top of a storage tier.
//
// Entries are stored as JSON {"data": <value>, "ts": <epoch millis>}. An entry is valid
// while now-ts <= TTL. Reads evict expired or undecodable entries and report them
// as absent, so callers never observe a stale value. Writes never fail the caller.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/storage"
)

type entry[T any] struct {
	Data T     `json:"data"`
	TS   int64 `json:"ts"`
}

// Store is a typed cache over a storage.Storage backend.
type Store[T any] struct {
	mu      sync.Mutex
	name    string
	backend storage.Storage
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Store.
type Option func(*options)

type options struct {
	name    string
	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics
}

// WithName labels the store in logs and metrics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New creates a Store. ttl <= 0 disables expiry.
func New[T any](backend storage.Storage, ttl time.Duration, opts ...Option) *Store[T] {
	o := options{
		name:   "default",
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		name:    o.name,
		backend: backend,
		ttl:     ttl,
		now:     o.now,
		logger:  o.logger.With("component", "cache", "cache", o.name),
		metrics: o.metrics,
	}
}

// TTL returns the configured time-to-live.
func (s *Store[T]) TTL() time.Duration {
	return s.ttl
}

// Get returns the cached value for key. Expired or corrupt entries are evicted
// and reported as absent.
func (s *Store[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		}
		s.metrics.inc(s.name, eventMiss)
		return zero, false
	}

	var e entry[T]
	if err := json.Unmarshal(raw, &e); err != nil {
		s.logger.DebugContext(ctx, "evicting undecodable cache entry", "key", key, "error", err)
		s.evictLocked(ctx, key)
		s.metrics.inc(s.name, eventCorrupt)
		return zero, false
	}

	if s.expired(e.TS) {
		s.logger.DebugContext(ctx, "evicting expired cache entry", "key", key, "stored_at", e.TS)
		s.evictLocked(ctx, key)
		s.metrics.inc(s.name, eventExpired)
		return zero, false
	}

	s.metrics.inc(s.name, eventHit)
	return e.Data, true
}

// Set stores value under key stamped with the current time. Failures are logged
// and swallowed.
func (s *Store[T]) Set(ctx context.Context, key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(entry[T]{Data: value, TS: s.now().UnixMilli()})
	if err == nil {
		err = s.backend.Set(ctx, key, raw)
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", sferrors.ErrCacheWrite, err)
		s.logger.WarnContext(ctx, "cache write dropped", "key", key, "error", err)
		s.metrics.inc(s.name, eventWriteFailure)
		return
	}
	s.metrics.inc(s.name, eventWrite)
}

// Evict removes key.
func (s *Store[T]) Evict(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(ctx, key)
}

func (s *Store[T]) evictLocked(ctx context.Context, key string) {
	if err := s.backend.Remove(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "cache evict failed", "key", key, "error", err)
		return
	}
	s.metrics.inc(s.name, eventEvict)
}

func (s *Store[T]) expired(storedAt int64) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().UnixMilli()-storedAt > s.ttl.Milliseconds()
}
