// Package store provides the cart persistence backends and the cart store.
package store

import (
	"context"
	"errors"
)

// Store errors.
var (
	ErrNotFound   = errors.New("key not found")
	ErrInvalidKey = errors.New("invalid storage key")
	ErrNilValue   = errors.New("value cannot be nil")
	ErrClosed     = errors.New("backend is closed")
)

// Backend defines a key-value persistence backend.
type Backend interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any prior value in one write.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases backend resources.
	Close() error
}
