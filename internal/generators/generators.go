package generators

import (
	"fmt"
	"math/rand"
	"sync"

	"synthkit/internal/models"
	"synthkit/internal/seeder"
)

// Registry holds named generation functions
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]seeder.Func
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]seeder.Func),
	}
}

// Default creates a registry with the built-in generators registered
func Default() *Registry {
	r := NewRegistry()
	r.Register("sample", Sample)
	r.Register("series", Series)
	r.Register("tokens", Tokens)
	return r
}

// Register adds fn under name, overwriting any previous registration
func (r *Registry) Register(name string, fn seeder.Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Lookup returns the generation function registered under name
func (r *Registry) Lookup(name string) (seeder.Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownGenerator, name)
	}
	return fn, nil
}

// Names returns the registered generator names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	return names
}

// Sample returns the seed reduced to a two-digit value
func Sample(seed uint64, rng *rand.Rand) (map[string]interface{}, error) {
	return map[string]interface{}{
		"value": seed % 100,
	}, nil
}

// Series returns a fixed-length random walk drawn from the rng
func Series(seed uint64, rng *rand.Rand) (map[string]interface{}, error) {
	const length = 32

	points := make([]float64, length)
	current := rng.Float64() * 100
	for i := range points {
		current += rng.Float64()*2 - 1
		points[i] = current
	}

	return map[string]interface{}{
		"points": points,
		"count":  length,
	}, nil
}

// Tokens returns a batch of opaque hex tokens drawn from the rng
func Tokens(seed uint64, rng *rand.Rand) (map[string]interface{}, error) {
	const count = 8

	tokens := make([]string, count)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("%016x", rng.Uint64())
	}

	return map[string]interface{}{
		"tokens": tokens,
		"count":  count,
	}, nil
}
