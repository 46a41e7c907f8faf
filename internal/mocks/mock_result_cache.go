package mocks

import (
	"context"
	"time"

	"synthkit/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockResultCache is a mock implementation of resultCache.Service
type MockResultCache struct {
	mock.Mock
}

// Get mocks the Get method of resultCache.Service
func (m *MockResultCache) Get(ctx context.Context, params map[string]interface{}) (*models.GenerationResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GenerationResult), args.Error(1)
}

// Set mocks the Set method of resultCache.Service
func (m *MockResultCache) Set(ctx context.Context, params map[string]interface{}, result *models.GenerationResult, ttl time.Duration) error {
	args := m.Called(ctx, params, result, ttl)
	return args.Error(0)
}

// Invalidate mocks the Invalidate method of resultCache.Service
func (m *MockResultCache) Invalidate(ctx context.Context, params map[string]interface{}) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

// InvalidatePattern mocks the InvalidatePattern method of resultCache.Service
func (m *MockResultCache) InvalidatePattern(ctx context.Context, substring string) (int, error) {
	args := m.Called(ctx, substring)
	return args.Int(0), args.Error(1)
}

// PurgeExpired mocks the PurgeExpired method of resultCache.Service
func (m *MockResultCache) PurgeExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
