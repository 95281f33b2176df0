// Package cache provides the TTL key-value store backing token revocation,
// refresh records, and the user snapshot cache.
//
// Absence and unavailability are distinct outcomes: Get returns ErrCacheMiss
// when a key does not exist and a different error when the backend cannot
// answer. Callers on correctness-critical paths (blacklist and refresh-record
// checks) must treat backend errors as verification failures, not as misses.
package cache

import (
	"context"
	"errors"
	"time"
)

// Common cache errors.
var (
	// ErrCacheMiss indicates that the key was not found in the cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidConfig indicates that the cache configuration is invalid.
	ErrInvalidConfig = errors.New("invalid cache configuration")
)

// Store is the key-value store contract used by the token and user services.
type Store interface {
	// Get retrieves a value. Returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a key exists.
	Exists(ctx context.Context, key string) (bool, error)

	// Close releases the backend connection.
	Close() error
}
