package cache

import (
	"sync"
	"time"

	"github.com/epeers/holdings/internal/models"
)

// FundCache provides an in-memory L1 cache of resolved fund constituents
type FundCache struct {
	funds map[string]fundEntry
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

type fundEntry struct {
	instrument models.Instrument
	fetchedAt  time.Time
}

// NewFundCache creates a new in-memory cache whose entries expire after ttl
func NewFundCache(ttl time.Duration) *FundCache {
	return &FundCache{
		funds: make(map[string]fundEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves cached constituents if fresh. An expired entry is removed.
func (c *FundCache) Get(key string) (models.Instrument, bool) {
	c.mu.RLock()
	entry, exists := c.funds[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if c.expired(entry) {
		c.mu.Lock()
		// Set may have replaced it meanwhile
		if cur, ok := c.funds[key]; ok && c.expired(cur) {
			delete(c.funds, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.instrument, true
}

func (c *FundCache) expired(e fundEntry) bool {
	return c.now().Sub(e.fetchedAt) > c.ttl
}

// Len returns the number of entries held, expired ones included until they
// are read or swept by Set
func (c *FundCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.funds)
}

// Set caches constituents and drops expired entries
func (c *FundCache) Set(key string, inst models.Instrument) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.funds {
		if c.expired(e) {
			delete(c.funds, k)
		}
	}
	c.funds[key] = fundEntry{
		instrument: inst,
		fetchedAt:  c.now(),
	}
}
