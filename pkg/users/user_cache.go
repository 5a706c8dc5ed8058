package users

import (
	"context"
)

// UserCacheInterface caches often needed users keyed by their ID
type UserCacheInterface interface {
	Get(ctx context.Context, key string) (*User, error)
	Add(ctx context.Context, key string, user *User) error
	Remove(ctx context.Context, key string) error
}

// FindCachedByID looks a user up in the cache before falling back to the
// repository; repository hits are written back to the cache
func FindCachedByID(ctx context.Context, cache UserCacheInterface, repository UserRepositoryInterface, id string) (*User, error) {
	if cache != nil {
		user, err := cache.Get(ctx, id)
		if err == nil {
			return user, nil
		}
	}

	user, err := repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		_ = cache.Add(ctx, id, user)
	}

	return user, nil
}
