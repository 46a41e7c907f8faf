package mocks

import (
	"context"
	"time"

	"synthkit/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockSynthesisService is a mock implementation of synthesis.SynthesisService
type MockSynthesisService struct {
	mock.Mock
}

// Synthesize mocks the Synthesize method of synthesis.SynthesisService
func (m *MockSynthesisService) Synthesize(ctx context.Context, generatorName, identifier string, params map[string]interface{}, ttl time.Duration) (*models.GenerationResult, error) {
	args := m.Called(ctx, generatorName, identifier, params, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GenerationResult), args.Error(1)
}

// SynthesizeBatch mocks the SynthesizeBatch method of synthesis.SynthesisService
func (m *MockSynthesisService) SynthesizeBatch(ctx context.Context, generatorName string, identifiers []string, params map[string]interface{}) (*models.BatchGenerateResponse, error) {
	args := m.Called(ctx, generatorName, identifiers, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BatchGenerateResponse), args.Error(1)
}

// FuseSources mocks the FuseSources method of synthesis.SynthesisService
func (m *MockSynthesisService) FuseSources(ctx context.Context, sources [][]models.Record, keyField string) (*models.FusionResult, error) {
	args := m.Called(ctx, sources, keyField)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FusionResult), args.Error(1)
}
