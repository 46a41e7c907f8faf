package resultCache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"synthkit/internal/cache"
	"synthkit/internal/models"
)

// resultCache implements Service using a generic cache
type resultCache struct {
	cache cache.Service
	ttl   time.Duration
}

// New creates a new generation-result cache
func New(cache cache.Service, ttl time.Duration) Service {
	return &resultCache{
		cache: cache,
		ttl:   ttl,
	}
}

// Key computes the content address of a request: the SHA-256 of the
// canonicalized parameters (sorted keys, JSON-normalized value types), so
// semantically identical requests share one entry regardless of map order
// or int/float representation.
func Key(params map[string]interface{}) (string, error) {
	canonical, err := canonicalize(params)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize cache params: %w", err)
	}

	digest := sha256.Sum256(canonical)
	return "result:" + hex.EncodeToString(digest[:]), nil
}

// canonicalize renders params as canonical JSON via an encode/decode
// round-trip: encoding sorts map keys, decoding normalizes numeric types
func canonicalize(params map[string]interface{}) ([]byte, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	var normalized interface{}
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, err
	}

	return json.Marshal(normalized)
}

// Get retrieves a generation result from the cache
func (r *resultCache) Get(ctx context.Context, params map[string]interface{}) (*models.GenerationResult, error) {
	cacheKey, err := Key(params)
	if err != nil {
		return nil, err
	}

	value, err := r.cache.Get(ctx, cacheKey)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case *models.GenerationResult:
		// Memory cache returns the actual object
		return v, nil
	case models.GenerationResult:
		return &v, nil
	case string:
		// File and redis caches return the JSON encoding
		var result models.GenerationResult
		if err := json.Unmarshal([]byte(v), &result); err != nil {
			// A corrupt entry is a miss; drop it so it regenerates
			_ = r.cache.Delete(ctx, cacheKey)
			return nil, fmt.Errorf("%w: %v", models.ErrCacheMiss, models.ErrCacheCorrupted)
		}
		return &result, nil
	default:
		return nil, fmt.Errorf("unexpected type in cache: %T", v)
	}
}

// Set stores a generation result in the cache
func (r *resultCache) Set(ctx context.Context, params map[string]interface{}, result *models.GenerationResult, ttl time.Duration) error {
	cacheKey, err := Key(params)
	if err != nil {
		return err
	}

	// Use provided TTL or the configured default
	cacheTTL := ttl
	if cacheTTL == 0 {
		cacheTTL = r.ttl
	}

	return r.cache.Set(ctx, cacheKey, result, cacheTTL)
}

// Invalidate removes the entry for the given params
func (r *resultCache) Invalidate(ctx context.Context, params map[string]interface{}) error {
	cacheKey, err := Key(params)
	if err != nil {
		return err
	}
	return r.cache.Delete(ctx, cacheKey)
}

// InvalidatePattern removes all result entries whose key contains substring
func (r *resultCache) InvalidatePattern(ctx context.Context, substring string) (int, error) {
	return r.cache.DeletePattern(ctx, substring)
}

// PurgeExpired proactively sweeps expired entries from the backing cache
func (r *resultCache) PurgeExpired(ctx context.Context) (int, error) {
	return r.cache.PurgeExpired(ctx)
}
