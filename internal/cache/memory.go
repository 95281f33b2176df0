package cache

import (
	"context"
	"sync"
	"time"
)

// memoryStore is a map-backed Store used in tests and single-process
// development runs. Expiry is checked on access; a background sweep is not
// needed at the entry counts this service caches.
type memoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory returns an in-memory Store.
func NewMemory() Store {
	return &memoryStore{items: make(map[string]memoryEntry)}
}

func (e memoryEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// Get retrieves a value. Returns ErrCacheMiss on absence or expiry.
func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if entry.expired() {
		delete(s.items, key)
		return nil, ErrCacheMiss
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

// Set stores a value with the given TTL.
func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = memoryEntry{value: stored, expiresAt: expiresAt}
	return nil
}

// Delete removes a value.
func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Exists reports whether a key exists and has not expired.
func (s *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[key]
	if !ok {
		return false, nil
	}
	if entry.expired() {
		delete(s.items, key)
		return false, nil
	}
	return true, nil
}

// Close clears the store.
func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]memoryEntry)
	return nil
}
