package openproject

import (
	"encoding/json"
	"sync"
	"time"
)

// defaultCacheTTL is the freshness window for cached metadata. Types,
// statuses and priorities change on the order of months; five minutes
// keeps staleness invisible while eliminating almost all repeat calls.
const defaultCacheTTL = 5 * time.Minute

// metadataCache is a small TTL cache keyed by logical resource name
// ("types", "statuses", "priorities"). Entries are replaced wholesale
// on refresh; there is no eviction because the key set is fixed and
// tiny. Concurrent refreshes of the same stale key are not coalesced —
// each caller fetches and the last write wins, which at this call
// volume costs at most one redundant request.
type metadataCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	payload   json.RawMessage
	fetchedAt time.Time
}

func newMetadataCache(ttl time.Duration) *metadataCache {
	return &metadataCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// fetch returns the cached payload for name when useCache is true and
// the entry is still fresh; otherwise it calls fn, stores the result
// with the current timestamp and returns it. A failed fn leaves any
// existing entry untouched.
func (c *metadataCache) fetch(name string, useCache bool, fn func() (json.RawMessage, error)) (json.RawMessage, error) {
	if useCache {
		c.mu.RLock()
		entry, ok := c.entries[name]
		c.mu.RUnlock()
		if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
			return entry.payload, nil
		}
	}

	payload, err := fn()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[name] = cacheEntry{payload: payload, fetchedAt: c.now()}
	c.mu.Unlock()
	return payload, nil
}
