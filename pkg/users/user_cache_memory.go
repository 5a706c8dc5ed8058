package users

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// UserCacheMemory is an in-memory LRU implementation of UserCacheInterface
type UserCacheMemory struct {
	cache *lru.Cache
}

// NewUserCacheMemory initializes a new UserCacheMemory
func NewUserCacheMemory(size int) (*UserCacheMemory, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}

	return &UserCacheMemory{
		cache: cache,
	}, nil
}

// Get retrieves a cached user
func (c *UserCacheMemory) Get(_ context.Context, key string) (*User, error) {
	result, ok := c.cache.Get(key)
	if !ok {
		return nil, fmt.Errorf("could not find key %s in user cache", key)
	}

	user, ok := result.(*User)
	if !ok {
		return nil, fmt.Errorf("cache entry was not a user")
	}

	return user, nil
}

// Add caches a user
func (c *UserCacheMemory) Add(_ context.Context, key string, user *User) error {
	c.cache.Add(key, user)
	return nil
}

// Remove invalidates an entry
func (c *UserCacheMemory) Remove(_ context.Context, key string) error {
	c.cache.Remove(key)
	return nil
}
