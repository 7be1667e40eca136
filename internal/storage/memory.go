package storage

import (
	"context"
	"fmt"
	"sync"
)

var _ Storage = (*Memory)(nil)

// Memory is an in-process Storage. With a positive quota it rejects writes that would
// grow the total stored bytes past the quota, the way browser storage does.
type Memory struct {
	mu    sync.RWMutex
	data  map[string][]byte
	size  int
	quota int
}

// NewMemory creates a Memory tier. quota <= 0 means unlimited.
func NewMemory(quota int) *Memory {
	return &Memory{
		data:  make(map[string][]byte),
		quota: quota,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	newSize := m.size - len(m.data[key]) + len(value)
	if m.quota > 0 && newSize > m.quota {
		return fmt.Errorf("%w: %d of %d bytes used, %d requested for %q", ErrQuotaExceeded, m.size, m.quota, len(value), key)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	m.size = newSize
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.size -= len(m.data[key])
	delete(m.data, key)
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
