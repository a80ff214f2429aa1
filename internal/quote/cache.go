package quote

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"stockwatch/internal/model"
)

type cacheEntry struct {
	expiresAt time.Time
	quote     model.Quote
}

// CachedFetcher caches quotes per symbol for a TTL. Staleness on the order
// of the TTL is acceptable here: the scan cadence is far coarser than the
// cache lifetime. Concurrent misses for the same symbol are collapsed into
// one upstream call.
type CachedFetcher struct {
	Next Fetcher
	TTL  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
	group singleflight.Group
}

// NewCachedFetcher wraps next with a TTL cache. A non-positive TTL disables
// caching entirely.
func NewCachedFetcher(next Fetcher, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{Next: next, TTL: ttl, items: make(map[string]cacheEntry)}
}

func (c *CachedFetcher) Name() string { return c.Next.Name() }

func (c *CachedFetcher) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	if c.TTL <= 0 {
		return c.Next.Quote(ctx, symbol)
	}

	c.mu.RLock()
	e, ok := c.items[symbol]
	c.mu.RUnlock()
	if ok && time.Now().Before(e.expiresAt) {
		q := e.quote
		return &q, nil
	}

	v, err, _ := c.group.Do(symbol, func() (interface{}, error) {
		q, err := c.Next.Quote(ctx, symbol)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items[symbol] = cacheEntry{expiresAt: time.Now().Add(c.TTL), quote: *q}
		c.mu.Unlock()
		return q, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Quote), nil
}
