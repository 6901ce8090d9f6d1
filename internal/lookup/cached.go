package lookup

import (
	"context"
	"time"

	"phishguard/internal/cache"
)

// Cached memoises successful answers from another provider. Failures are
// not cached so a transient outage does not stick.
type Cached struct {
	next  Provider
	store *cache.Store
	ttl   time.Duration
}

func NewCached(next Provider, store *cache.Store, ttl time.Duration) *Cached {
	return &Cached{next: next, store: store, ttl: ttl}
}

func (c *Cached) Name() string    { return c.next.Name() }
func (c *Cached) Simulated() bool { return c.next.Simulated() }

func (c *Cached) DomainAge(ctx context.Context, domain string) (int, error) {
	key := c.next.Name() + ":age:" + domain
	if v, ok := c.store.Get(key); ok {
		return v.(int), nil
	}
	age, err := c.next.DomainAge(ctx, domain)
	if err != nil {
		return 0, err
	}
	c.store.Set(key, age, c.ttl)
	return age, nil
}

func (c *Cached) IsListed(ctx context.Context, rawURL, domain string) (bool, error) {
	key := c.next.Name() + ":listed:" + rawURL
	if v, ok := c.store.Get(key); ok {
		return v.(bool), nil
	}
	listed, err := c.next.IsListed(ctx, rawURL, domain)
	if err != nil {
		return false, err
	}
	c.store.Set(key, listed, c.ttl)
	return listed, nil
}
