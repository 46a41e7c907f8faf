package fusion

import (
	"context"

	"synthkit/internal/models"
)

// Service defines the interface for multi-source record fusion
// External packages should use this interface, not the concrete implementations
type Service interface {
	Fuse(ctx context.Context, sources [][]models.Record, keyField string) (*models.FusionResult, error)
}
