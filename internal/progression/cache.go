package progression

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/internal/repository"
)

// CachedStore is a read-through, write-through cache in front of a repository.
// It assumes this process is the only writer for the users it caches.
type CachedStore struct {
	inner repository.Progression
	cache *expirable.LRU[string, *domain.ProgressionState]
}

// NewCachedStore wraps inner with an LRU of the given size and TTL
func NewCachedStore(inner repository.Progression, size int, ttl time.Duration) *CachedStore {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{
		inner: inner,
		cache: expirable.NewLRU[string, *domain.ProgressionState](size, nil, ttl),
	}
}

func (c *CachedStore) GetProgression(ctx context.Context, userID string) (*domain.ProgressionState, error) {
	if state, ok := c.cache.Get(userID); ok {
		return state.Clone(), nil
	}

	state, err := c.inner.GetProgression(ctx, userID)
	if err != nil || state == nil {
		return state, err
	}
	c.cache.Add(userID, state.Clone())
	return state, nil
}

func (c *CachedStore) CommitProgression(ctx context.Context, state *domain.ProgressionState) error {
	if err := c.inner.CommitProgression(ctx, state); err != nil {
		// The write may or may not have landed
		c.cache.Remove(state.UserID)
		return err
	}
	c.cache.Add(state.UserID, state.Clone())
	return nil
}

func (c *CachedStore) Ping(ctx context.Context) error {
	return c.inner.Ping(ctx)
}

// Invalidate drops one user from the cache
func (c *CachedStore) Invalidate(userID string) {
	c.cache.Remove(userID)
}

// Len returns the number of cached users
func (c *CachedStore) Len() int {
	return c.cache.Len()
}
