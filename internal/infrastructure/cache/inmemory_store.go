package cache

import (
	"context"
	"sync"
	"time"

	"github.com/resolvd/backend/internal/domain/shared"
)

// entry is one stored value with its expiration
type entry struct {
	value     interface{}
	expiresAt time.Time
}

// InMemoryStore implements CacheStore using an in-memory map. Suitable for
// single-instance deployments and testing; state is not shared across
// processes.
type InMemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryStore creates a new in-memory cache store. It starts a
// background goroutine to clean up expired entries.
func NewInMemoryStore() *InMemoryStore {
	store := &InMemoryStore{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Get returns the cached value for key if present and not expired
func (s *InMemoryStore) Get(ctx context.Context, key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the given TTL
func (s *InMemoryStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return true
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (s *InMemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.stopChan:
			return
		}
	}
}

// removeExpired removes all expired entries
func (s *InMemoryStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Len returns the number of stored entries, including not-yet-swept expired
// ones (for testing/monitoring)
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure InMemoryStore implements CacheStore
var _ shared.CacheStore = (*InMemoryStore)(nil)
