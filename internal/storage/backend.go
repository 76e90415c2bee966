package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a key doesn't exist in a backend
var ErrKeyNotFound = errors.New("key not found")

// Backend defines the interface for a single key-value storage target.
// All implementations must be thread-safe for concurrent access.
// Backends are uncoordinated: the RecordStore fans writes out to every
// configured backend and reconciles divergent reads by revision.
type Backend interface {
	// Name identifies the backend in logs
	Name() string

	// Get retrieves a value by key
	// Returns ErrKeyNotFound if the key doesn't exist
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores a value with the given key
	// Overwrites any existing value for the key
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes a key-value pair
	// No error if key doesn't exist
	Delete(ctx context.Context, key string) error
}
