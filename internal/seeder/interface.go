package seeder

import (
	"context"
	"math/rand"

	"synthkit/internal/models"
)

// Func is the generation-function plug-in contract. Implementations must be
// pure: every randomized decision draws from rng (seeded from the derived
// seed), never from the global rand source, the wall clock, or other ambient
// state. The same seed must always produce the same output.
type Func func(seed uint64, rng *rand.Rand) (map[string]interface{}, error)

// Service defines the interface for deterministic seeded generation
// External packages should use this interface, not the concrete implementations
type Service interface {
	// Generate derives a seed from identifier and runs fn with it. The
	// result is reproducible: same identifier + same fn = same payload.
	Generate(ctx context.Context, identifier string, fn Func) (*models.GenerationResult, error)

	// GenerateVolatile runs fn with an entropy-sourced seed. The result is
	// explicitly NOT reproducible; callers that need determinism must use
	// Generate instead.
	GenerateVolatile(ctx context.Context, fn Func) (*models.GenerationResult, error)
}
