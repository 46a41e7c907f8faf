package seeder

import (
	"context"
	cryptorand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"

	"synthkit/internal/logger"
	"synthkit/internal/models"
)

// Generator implements Service. It is stateless: every call constructs its
// own PRNG instance, so it is safe for concurrent use.
type Generator struct {
	logger logger.Service
}

// NewService creates a new deterministic generation service
func NewService(logger logger.Service) Service {
	return newGenerator(logger)
}

// newGenerator creates the concrete implementation
func newGenerator(logger logger.Service) *Generator {
	return &Generator{
		logger: logger,
	}
}

// DeriveSeed maps an identifier to its seed: the first 8 bytes of the
// identifier's SHA-256 digest, interpreted as a big-endian unsigned integer.
func DeriveSeed(identifier string) (uint64, error) {
	if identifier == "" {
		return 0, models.ErrEmptyIdentifier
	}

	digest := sha256.Sum256([]byte(identifier))
	return binary.BigEndian.Uint64(digest[:8]), nil
}

// Generate runs fn with the seed derived from identifier
func (g *Generator) Generate(ctx context.Context, identifier string, fn Func) (*models.GenerationResult, error) {
	seed, err := DeriveSeed(identifier)
	if err != nil {
		return nil, err
	}

	payload, err := g.run(seed, fn)
	if err != nil {
		return nil, models.NewGenerationError(identifier, "generation function failed", err)
	}

	return &models.GenerationResult{
		Identifier:    identifier,
		Seed:          seed,
		Payload:       payload,
		Deterministic: true,
		Timestamp:     time.Now().UTC(),
	}, nil
}

// GenerateVolatile runs fn with an entropy-sourced seed
func (g *Generator) GenerateVolatile(ctx context.Context, fn Func) (*models.GenerationResult, error) {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return nil, fmt.Errorf("failed to source entropy seed: %w", err)
	}
	seed := binary.BigEndian.Uint64(buf[:])

	g.logger.LogInfo(ctx, logger.OpVolatileSeed, "Generating with entropy-sourced seed, output is not reproducible", map[string]interface{}{
		"seed": seed,
	})

	payload, err := g.run(seed, fn)
	if err != nil {
		return nil, models.NewGenerationError("", "generation function failed", err)
	}

	return &models.GenerationResult{
		Seed:          seed,
		Payload:       payload,
		Deterministic: false,
		Timestamp:     time.Now().UTC(),
	}, nil
}

// run executes the generation function with a PRNG dedicated to this call
func (g *Generator) run(seed uint64, fn Func) (map[string]interface{}, error) {
	rng := rand.New(rand.NewSource(int64(seed)))

	payload, err := fn(seed, rng)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: generation function returned no output", models.ErrGenerationFailed)
	}

	return payload, nil
}
