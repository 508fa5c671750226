package payment

import (
	"fmt"
	"sync"
	"time"
)

// quoteCache holds quote results keyed by request parameters for a short
// wall-clock window, so repeated resolutions of the same route do not
// hammer the aggregator. Entries expire by age only.
type quoteCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	routes    []Route
	fetchedAt time.Time
}

func newQuoteCache(ttl time.Duration) *quoteCache {
	return &quoteCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func cacheKey(req QuoteRequest) string {
	return fmt.Sprintf("%s/%s/%s->%s/%s/%s@%s",
		req.SourceChain, req.SourceToken, req.SourceAddress,
		req.DestChain, req.DestToken, req.DestAddress,
		req.Amount)
}

func (c *quoteCache) get(req QuoteRequest) ([]Route, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey(req)]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) > c.ttl {
		delete(c.entries, cacheKey(req))
		return nil, false
	}
	return entry.routes, true
}

func (c *quoteCache) put(req QuoteRequest, routes []Route) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(req)] = cacheEntry{routes: routes, fetchedAt: c.now()}
}
