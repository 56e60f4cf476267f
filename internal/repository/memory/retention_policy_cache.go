package memory

import (
	"time"

	"arogya-chat-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// RetentionPolicyCache keeps recently read user policies so history reads skip the user lookup.
type RetentionPolicyCache struct {
	cache *cache.Cache
}

func NewRetentionPolicyCache(ttl time.Duration) *RetentionPolicyCache {
	return &RetentionPolicyCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *RetentionPolicyCache) Set(userId string, policy entity.RetentionPolicy) {
	c.cache.Set(userId, policy, cache.DefaultExpiration)
}

func (c *RetentionPolicyCache) Get(userId string) (entity.RetentionPolicy, bool) {
	if x, found := c.cache.Get(userId); found {
		return x.(entity.RetentionPolicy), true
	}
	return "", false
}

func (c *RetentionPolicyCache) Invalidate(userId string) {
	c.cache.Delete(userId)
}
