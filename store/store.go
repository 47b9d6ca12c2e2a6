// Package store provides the local persistent cache the tracker keeps
// between sessions: previously fetched badge and user records, and per-user
// completion sets. The collection itself performs no I/O; it is rebuilt at
// startup from this cache by repeated inserts.
package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a key does not exist in the store.
//
// Implementations must return an error satisfying
// errors.Is(err, ErrKeyNotFound).
var ErrKeyNotFound = errors.New("key not found")

// Store is a key-value cache with string keys and opaque byte values.
type Store interface {
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns all keys with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	// Close releases the store's resources.
	Close() error
}
