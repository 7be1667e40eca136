package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var _ Storage = (*Redis)(nil)

// Redis is a durable Storage backed by plain redis strings under a key prefix.
type Redis struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedis creates a Redis tier. prefix namespaces every key, e.g. "storefront:".
func NewRedis(rdb redis.Cmdable, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %q from redis: %w", key, err)
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		if isOOM(err) {
			return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("failed to set %q in redis: %w", key, err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %q from redis: %w", key, err)
	}
	return nil
}

// isOOM reports a maxmemory rejection ("OOM command not allowed ...").
func isOOM(err error) bool {
	var rerr redis.Error
	if errors.As(err, &rerr) {
		msg := rerr.Error()
		return len(msg) >= 3 && msg[:3] == "OOM"
	}
	return false
}
