package resultCache

import (
	"context"
	"time"

	"synthkit/internal/models"
)

// Service defines the interface for content-addressed generation-result
// caching: entries are keyed by a stable hash of the request parameters.
type Service interface {
	Get(ctx context.Context, params map[string]interface{}) (*models.GenerationResult, error)
	Set(ctx context.Context, params map[string]interface{}, result *models.GenerationResult, ttl time.Duration) error
	Invalidate(ctx context.Context, params map[string]interface{}) error
	InvalidatePattern(ctx context.Context, substring string) (int, error)
	PurgeExpired(ctx context.Context) (int, error)
}
