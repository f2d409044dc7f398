// Package cache provides the get/put-with-ttl collaborator consulted by
// the provider router. Absence of an entry is never an error.
package cache

import (
	"sync"
	"time"
)

// Cache is the capability the router and individual agents may consult.
type Cache interface {
	Get(key string) (string, bool)
	Put(key, value string, ttl time.Duration)
}

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process TTL cache. Expired entries are dropped on read
// and opportunistically purged on write.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

// Get returns the cached value if present and unexpired.
func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return "", false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a Put may have refreshed it.
		if cur, ok := m.entries[key]; ok && time.Now().After(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return "", false
	}
	return e.value, true
}

// Put stores the value for the given ttl. A non-positive ttl stores nothing.
func (m *Memory) Put(key, value string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.entries[key] = entry{value: value, expiresAt: now.Add(ttl)}
}

// Len returns the number of stored entries, including not-yet-purged
// expired ones.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
