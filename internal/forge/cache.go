package forge

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"git.home.luguber.info/inful/docagent/internal/reference"
)

// DefaultCacheTTL is how long fetched metadata is reused when no TTL is given.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	info    *RepositoryInfo
	expires time.Time
}

// CachingProvider reuses successful lookups per reference for a TTL and
// collapses concurrent lookups of the same reference into one call.
// Failures are not cached.
type CachingProvider struct {
	next  Provider
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCachingProvider wraps next. A non-positive ttl uses DefaultCacheTTL.
func NewCachingProvider(next Provider, ttl time.Duration) *CachingProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingProvider{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Kind returns the wrapped provider's kind.
func (c *CachingProvider) Kind() Kind { return c.next.Kind() }

// FetchRepositoryInfo returns cached metadata for ref or fetches it.
func (c *CachingProvider) FetchRepositoryInfo(ctx context.Context, ref reference.Reference) (*RepositoryInfo, error) {
	key := ref.Endpoint()
	if info, ok := c.lookup(key); ok {
		return info, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// Detached from the first caller so its cancellation does not fail the others.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
		defer cancel()
		info, err := c.next.FetchRepositoryInfo(fetchCtx, ref)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = cacheEntry{info: info, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return info, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*RepositoryInfo), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *CachingProvider) lookup(key string) (*RepositoryInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.info, true
}
