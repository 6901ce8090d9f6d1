// Package cache memoises lookup answers in process memory.
package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries bounds a Store built with New. Blocklist answers are keyed
// by full URL, so without a bound the cache would grow with every page seen.
const DefaultMaxEntries = 10_000

type entry struct {
	value   any
	expires time.Time
}

// Store is a thread-safe TTL cache with a size bound. When full, expired
// entries go first, then the entry closest to expiry.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time
}

func New() *Store {
	return NewBounded(DefaultMaxEntries)
}

// NewBounded builds a store holding at most max entries; max <= 0 means
// DefaultMaxEntries.
func NewBounded(max int) *Store {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Store{
		entries:    make(map[string]entry),
		maxEntries: max,
		now:        time.Now,
	}
}

func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.evictLocked(now)
	}
	s.entries[key] = entry{value: value, expires: now.Add(ttl)}
}

// Get returns the live value for key. Expired entries report a miss.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, found := s.entries[key]
	if !found || s.now().After(e.expires) {
		return nil, false
	}
	return e.value, true
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Len counts entries, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Cleanup drops expired entries and reports how many went.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropExpiredLocked(s.now())
}

func (s *Store) dropExpiredLocked(now time.Time) int {
	n := 0
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

func (s *Store) evictLocked(now time.Time) {
	if s.dropExpiredLocked(now) > 0 {
		return
	}
	var (
		victim string
		soon   time.Time
	)
	for k, e := range s.entries {
		if victim == "" || e.expires.Before(soon) {
			victim, soon = k, e.expires
		}
	}
	delete(s.entries, victim)
}

// StartCleanup runs Cleanup every interval until ctx is cancelled.
func (s *Store) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}
