package synthesis

import (
	"context"
	"time"

	"synthkit/internal/models"
)

// SynthesisService defines the interface for generation orchestration
// External packages should use this interface, not the concrete implementations
type SynthesisService interface {
	Synthesize(ctx context.Context, generatorName, identifier string, params map[string]interface{}, ttl time.Duration) (*models.GenerationResult, error)
	SynthesizeBatch(ctx context.Context, generatorName string, identifiers []string, params map[string]interface{}) (*models.BatchGenerateResponse, error)
	FuseSources(ctx context.Context, sources [][]models.Record, keyField string) (*models.FusionResult, error)
}
