package mocks

import (
	"context"

	"synthkit/internal/models"
	"synthkit/internal/seeder"

	"github.com/stretchr/testify/mock"
)

// MockSeeder is a mock implementation of seeder.Service
type MockSeeder struct {
	mock.Mock
}

// Generate mocks the Generate method of seeder.Service
func (m *MockSeeder) Generate(ctx context.Context, identifier string, fn seeder.Func) (*models.GenerationResult, error) {
	args := m.Called(ctx, identifier, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GenerationResult), args.Error(1)
}

// GenerateVolatile mocks the GenerateVolatile method of seeder.Service
func (m *MockSeeder) GenerateVolatile(ctx context.Context, fn seeder.Func) (*models.GenerationResult, error) {
	args := m.Called(ctx, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GenerationResult), args.Error(1)
}
