package generators

import (
	"math/rand"
	"testing"

	"synthkit/internal/models"
	"synthkit/internal/seeder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(seed)))
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	registry := NewRegistry()

	custom := func(seed uint64, rng *rand.Rand) (map[string]interface{}, error) {
		return map[string]interface{}{"seed": seed}, nil
	}
	registry.Register("custom", custom)

	fn, err := registry.Lookup("custom")
	require.NoError(t, err)
	require.NotNil(t, fn)

	payload, err := fn(42, newRng(42))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), payload["seed"])
}

func TestRegistry_Lookup_Unknown(t *testing.T) {
	registry := NewRegistry()

	fn, err := registry.Lookup("nope")
	assert.Nil(t, fn)
	assert.ErrorIs(t, err, models.ErrUnknownGenerator)
	assert.Contains(t, err.Error(), "nope")
}

func TestDefault_HasBuiltins(t *testing.T) {
	registry := Default()

	for _, name := range []string{"sample", "series", "tokens"} {
		fn, err := registry.Lookup(name)
		require.NoError(t, err, name)
		assert.NotNil(t, fn, name)
	}
}

func TestSample(t *testing.T) {
	payload, err := Sample(15346875938269234217, newRng(15346875938269234217))
	require.NoError(t, err)
	assert.Equal(t, uint64(17), payload["value"])
}

func TestSeries_Deterministic(t *testing.T) {
	const seed = 12345

	first, err := Series(seed, newRng(seed))
	require.NoError(t, err)
	second, err := Series(seed, newRng(seed))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first["points"], 32)
}

func TestTokens_Deterministic(t *testing.T) {
	const seed = 6789

	first, err := Tokens(seed, newRng(seed))
	require.NoError(t, err)
	second, err := Tokens(seed, newRng(seed))
	require.NoError(t, err)

	assert.Equal(t, first, second)

	tokens := first["tokens"].([]string)
	require.Len(t, tokens, 8)
	for _, token := range tokens {
		assert.Len(t, token, 16)
	}
}

func TestTokens_DifferentSeedsDiffer(t *testing.T) {
	first, err := Tokens(1, newRng(1))
	require.NoError(t, err)
	second, err := Tokens(2, newRng(2))
	require.NoError(t, err)

	assert.NotEqual(t, first["tokens"], second["tokens"])
}

// Interface check: builtins satisfy the plug-in contract
var _ seeder.Func = Sample
var _ seeder.Func = Series
var _ seeder.Func = Tokens
