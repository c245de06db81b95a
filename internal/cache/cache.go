// Package cache memoizes search results for the lifetime of the process.
package cache

import (
	"sync"

	"github.com/lepinkainen/bookfinder/internal/book"
)

// ResultCache maps a query string to the records it produced. Keys are
// compared verbatim: no trimming, no case folding. Entries are never evicted
// and never expire; an instance lives as long as whatever constructed it.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string][]book.Record
}

// New creates an empty ResultCache.
func New() *ResultCache {
	return &ResultCache{
		entries: make(map[string][]book.Record),
	}
}

// Lookup returns the records stored for query. It never touches the network.
func (c *ResultCache) Lookup(query string) ([]book.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records, ok := c.entries[query]
	if !ok {
		return nil, false
	}
	return book.Clone(records), true
}

// Store inserts or overwrites the records for query. An empty result list is
// a valid entry and is cached like any other.
func (c *ResultCache) Store(query string, records []book.Record) {
	stored := book.Clone(records)
	if stored == nil {
		stored = []book.Record{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[query] = stored
}

// Len returns the number of cached queries.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
