package cache

import (
	"context"
	"time"
)

// Service defines the interface for generic caching operations.
// External packages should use this interface, not the concrete implementations.
//
// Get applies lazy expiry: an entry past its TTL is removed and reported as
// a miss (models.ErrCacheMiss). PurgeExpired is the proactive counterpart
// for callers that want to sweep ahead of time.
type Service interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, substring string) (int, error)
	PurgeExpired(ctx context.Context) (int, error)
}
