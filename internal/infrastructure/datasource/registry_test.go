package datasource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvd/backend/internal/domain/datasource"
)

func testProfile(name string) datasource.Profile {
	return datasource.Profile{
		Name:        name,
		Kind:        "http",
		BaseAddress: "http://example.test",
		TimeoutMs:   1000,
		RetryBudget: 3,
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	registry := NewRegistry()
	registry.Register(testProfile("JsonPlaceholder"))

	for _, variant := range []string{"JsonPlaceholder", "jsonplaceholder", "JSONPLACEHOLDER", "jsonPlaceHolder"} {
		profile, err := registry.Resolve(variant)
		require.NoError(t, err, "variant %q", variant)
		// Name keeps its original casing regardless of lookup spelling.
		assert.Equal(t, "JsonPlaceholder", profile.Name)
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	registry := NewRegistry()
	registry.Register(testProfile("alpha"))
	registry.Register(testProfile("beta"))

	_, err := registry.Resolve("gamma")
	require.Error(t, err)

	var notFound *datasource.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "gamma", notFound.Name)
	assert.Equal(t, []string{"alpha", "beta"}, notFound.Available)
	assert.Contains(t, err.Error(), "available: alpha, beta")
}

func TestRegistryResolveEmpty(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Resolve("anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no datasources registered")
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	registry := NewRegistry()
	first := testProfile("api")
	first.TimeoutMs = 1000
	second := testProfile("API")
	second.TimeoutMs = 2000

	registry.Register(first)
	registry.Register(second)

	profile, err := registry.Resolve("api")
	require.NoError(t, err)
	assert.Equal(t, 2000, profile.TimeoutMs)
	assert.Equal(t, "API", profile.Name)
	assert.Len(t, registry.List(), 1)
}

func TestRegistryUnregister(t *testing.T) {
	registry := NewRegistry()
	registry.Register(testProfile("api"))

	assert.True(t, registry.Unregister("API"))

	_, err := registry.Resolve("api")
	var notFound *datasource.NotFoundError
	require.True(t, errors.As(err, &notFound))

	// Removing an absent name reports false, not an error.
	assert.False(t, registry.Unregister("api"))
}

func TestRegistryListSorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register(testProfile("zeta"))
	registry.Register(testProfile("Alpha"))
	registry.Register(testProfile("mid"))

	profiles := registry.List()
	require.Len(t, profiles, 3)
	assert.Equal(t, "Alpha", profiles[0].Name)
	assert.Equal(t, "mid", profiles[1].Name)
	assert.Equal(t, "zeta", profiles[2].Name)
}
