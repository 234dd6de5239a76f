package cache

import (
	"sync"
	"time"

	"github.com/conduit-lang/derive/internal/compiler/logic"
)

// CachedInstance is a derived function with metadata
type CachedInstance struct {
	Func     *logic.Func
	Key      string
	CachedAt time.Time
	LastUsed time.Time
}

// Stats counts lookups since the cache was created or cleared
type Stats struct {
	Hits    int
	Misses  int
	Entries int
}

// HitRate returns the share of lookups that hit, as a percentage
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

// InstanceCache keeps derived functions in memory between builds, mainly
// for watch mode. It is safe for concurrent use.
type InstanceCache struct {
	entries map[string]*CachedInstance
	hits    int
	misses  int
	mu      sync.Mutex
}

// NewInstanceCache creates an empty cache
func NewInstanceCache() *InstanceCache {
	return &InstanceCache{
		entries: make(map[string]*CachedInstance),
	}
}

// Get retrieves a derived function by key and marks it used
func (ic *InstanceCache) Get(key string) (*logic.Func, bool) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	entry, exists := ic.entries[key]
	if !exists {
		ic.misses++
		return nil, false
	}
	ic.hits++
	entry.LastUsed = time.Now()
	return entry.Func, true
}

// Set stores a derived function. Failed derivations are never cached.
func (ic *InstanceCache) Set(key string, fn *logic.Func) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	now := time.Now()
	ic.entries[key] = &CachedInstance{
		Func:     fn,
		Key:      key,
		CachedAt: now,
		LastUsed: now,
	}
}

// Invalidate removes an entry from the cache
func (ic *InstanceCache) Invalidate(key string) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	delete(ic.entries, key)
}

// InvalidateAll clears the entire cache and its counters
func (ic *InstanceCache) InvalidateAll() {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	ic.entries = make(map[string]*CachedInstance)
	ic.hits, ic.misses = 0, 0
}

// Size returns the number of cached entries
func (ic *InstanceCache) Size() int {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	return len(ic.entries)
}

// Stats returns the current counters
func (ic *InstanceCache) Stats() Stats {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	return Stats{Hits: ic.hits, Misses: ic.misses, Entries: len(ic.entries)}
}

// Prune removes entries that haven't been used in the given duration
func (ic *InstanceCache) Prune(maxAge time.Duration) int {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	now := time.Now()
	pruned := 0

	for key, entry := range ic.entries {
		if now.Sub(entry.LastUsed) > maxAge {
			delete(ic.entries, key)
			pruned++
		}
	}

	return pruned
}
