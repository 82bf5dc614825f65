package cache

import (
	"sync"
	"sync/atomic"

	"github.com/vsinha/clinicaldemand/pkg/domain/entities"
)

// DefaultMaxEntries bounds the cache when no explicit size is given
const DefaultMaxEntries = 1024

// Stats is a point-in-time view of cache activity
type Stats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// ResultCache memoizes result bundles keyed by structurally equal model inputs.
// Bundles are immutable once computed, so the same pointer is handed to every caller.
type ResultCache struct {
	maxEntries int
	entries    map[entities.ModelInput]*entities.ResultBundle
	mutex      sync.RWMutex
	hits       atomic.Uint64
	misses     atomic.Uint64
}

// NewResultCache creates a cache holding at most maxEntries bundles (<= 0 uses DefaultMaxEntries)
func NewResultCache(maxEntries int) *ResultCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &ResultCache{
		maxEntries: maxEntries,
		entries:    make(map[entities.ModelInput]*entities.ResultBundle),
	}
}

// Get returns the bundle computed for input, if present
func (c *ResultCache) Get(input entities.ModelInput) (*entities.ResultBundle, bool) {
	c.mutex.RLock()
	bundle, ok := c.entries[input]
	c.mutex.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return bundle, ok
}

// Put stores the bundle computed for input
func (c *ResultCache) Put(input entities.ModelInput, bundle *entities.ResultBundle) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Clear everything when full; recomputation is cheap and keeps eviction trivial
	if _, exists := c.entries[input]; !exists && len(c.entries) >= c.maxEntries {
		c.entries = make(map[entities.ModelInput]*entities.ResultBundle)
	}
	c.entries[input] = bundle
}

// GetOrCompute returns the cached bundle for input or computes and stores it.
// Errors are not cached.
func (c *ResultCache) GetOrCompute(
	input entities.ModelInput,
	compute func(entities.ModelInput) (*entities.ResultBundle, error),
) (*entities.ResultBundle, bool, error) {
	if bundle, ok := c.Get(input); ok {
		return bundle, true, nil
	}

	bundle, err := compute(input)
	if err != nil {
		return nil, false, err
	}
	c.Put(input, bundle)
	return bundle, false, nil
}

// Len returns the number of cached bundles
func (c *ResultCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// Clear drops every cached bundle
func (c *ResultCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[entities.ModelInput]*entities.ResultBundle)
}

// Stats returns current entry count and hit/miss counters
func (c *ResultCache) Stats() Stats {
	return Stats{
		Entries: c.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
