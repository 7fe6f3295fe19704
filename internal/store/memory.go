package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBackend implements Backend with in-memory storage.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][]byte
	closed bool
}

// NewMemoryBackend creates a new MemoryBackend instance.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		values: make(map[string][]byte),
	}
}

// Get retrieves a copy of the value stored under key.
func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get value: %w", ctx.Err())
	default:
	}

	if key == "" {
		return nil, ErrInvalidKey
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrClosed
	}

	value, exists := b.values[key]
	if !exists {
		return nil, ErrNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Put stores a copy of value under key.
func (b *MemoryBackend) Put(ctx context.Context, key string, value []byte) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("put value: %w", ctx.Err())
	default:
	}

	if key == "" {
		return ErrInvalidKey
	}

	if value == nil {
		return ErrNilValue
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	b.values[key] = stored

	return nil
}

// Close marks the backend closed; later calls return ErrClosed.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}
