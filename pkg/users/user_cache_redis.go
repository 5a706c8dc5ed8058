package users

import (
	"context"
	"time"

	rcache "github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"
)

// UserCacheRedis is a Redis implementation of UserCacheInterface
type UserCacheRedis struct {
	cache *rcache.Cache
}

// NewUserCacheRedis initializes a new UserCacheRedis
func NewUserCacheRedis(redisClient *redis.Client) *UserCacheRedis {
	return &UserCacheRedis{
		cache: rcache.New(&rcache.Options{
			Redis: redisClient,
		}),
	}
}

// Get retrieves a cached user
func (c *UserCacheRedis) Get(ctx context.Context, key string) (*User, error) {
	var user User
	err := c.cache.Get(ctx, cacheKey(key), &user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Add caches a user for one hour
func (c *UserCacheRedis) Add(ctx context.Context, key string, user *User) error {
	return c.cache.Set(&rcache.Item{
		Ctx:   ctx,
		Key:   cacheKey(key),
		Value: user,
		TTL:   time.Hour,
	})
}

// Remove invalidates an entry
func (c *UserCacheRedis) Remove(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, cacheKey(key))
}

func cacheKey(key string) string {
	return "user:" + key
}
