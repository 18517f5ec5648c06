package cache

import (
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryTier is the in-process cache tier. Entries carry their own expiry
// and are lazily evicted on read.
type MemoryTier struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryTier creates an empty in-memory tier.
func NewMemoryTier() *MemoryTier {
	return &MemoryTier{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the payload for key, or false if absent or expired. Expired
// entries are removed as a side effect.
func (m *MemoryTier) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a Set may have raced in.
		if cur, ok := m.entries[key]; ok && m.now().After(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return entry.payload, true
}

// Set stores payload under key for ttl. An existing entry is overwritten.
func (m *MemoryTier) Set(key string, payload []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{payload: payload, expiresAt: m.now().Add(ttl)}
}

// DeletePrefix removes every entry whose key starts with prefix.
func (m *MemoryTier) DeletePrefix(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
}

// Clear empties the tier.
func (m *MemoryTier) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
}

// Len returns the number of live or expired-but-unevicted entries.
func (m *MemoryTier) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
