package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/quilt-installer/internal/model"
)

func gameCatalog() []model.PlatformVersion {
	return []model.PlatformVersion{
		{ID: "24w10a", Stable: false, ReleaseOrdinal: 4},
		{ID: "1.20.5-pre1", Stable: false, ReleaseOrdinal: 3},
		{ID: "1.20.4", Stable: true, ReleaseOrdinal: 2},
		{ID: "1.20.3", Stable: true, ReleaseOrdinal: 1},
	}
}

func loaderCatalog() []model.LoaderVersion {
	return []model.LoaderVersion{
		model.MustLoaderVersion("1.0.0"),
		model.MustLoaderVersion("1.1.0-beta.1"),
	}
}

func TestSelect_PlatformScenarios(t *testing.T) {
	catalog := []model.PlatformVersion{{ID: "1.20.4", Stable: true}, {ID: "24w10a", Stable: false}}

	v, err := Select(catalog, Policy{Kind: PreRelease})
	require.NoError(t, err)
	assert.Equal(t, "24w10a", v.ID)

	v, err = Select(catalog, Policy{Kind: Stable})
	require.NoError(t, err)
	assert.Equal(t, "1.20.4", v.ID)
}

func TestSelect_LoaderScenarios(t *testing.T) {
	catalog := loaderCatalog()

	v, err := Select(catalog, Policy{Kind: Stable})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v.Identifier())

	v, err = Select(catalog, ExplicitPolicy("1.1.0-beta.1"))
	require.NoError(t, err)
	assert.Equal(t, "1.1.0-beta.1", v.Identifier())

	v, err = Select(catalog, Policy{Kind: PreRelease})
	require.NoError(t, err)
	assert.Equal(t, "1.1.0-beta.1", v.Identifier())
}

func TestSelect_StableIsDeterministic(t *testing.T) {
	catalog := gameCatalog()
	before := append([]model.PlatformVersion(nil), catalog...)

	first, err := Select(catalog, Policy{Kind: Stable})
	require.NoError(t, err)
	assert.True(t, first.IsStable())

	for i := 0; i < 10; i++ {
		again, err := Select(catalog, Policy{Kind: Stable})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, before, catalog, "catalog must not be mutated")
}

func TestSelect_ExplicitEveryPresentID(t *testing.T) {
	for _, want := range gameCatalog() {
		got, err := Select(gameCatalog(), ExplicitPolicy(want.ID))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	for _, want := range loaderCatalog() {
		got, err := Select(loaderCatalog(), ExplicitPolicy(want.Identifier()))
		require.NoError(t, err)
		assert.Equal(t, want.Identifier(), got.Identifier())
	}
}

func TestSelect_ExplicitNotFound(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"absent", "1.99.9"},
		{"case sensitive", "24W10A"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SelectKind(gameCatalog(), ExplicitPolicy(tt.id), "Minecraft")
			var nf *model.NotFoundError
			require.True(t, errors.As(err, &nf))
			assert.Equal(t, tt.id, nf.Requested)
			assert.Contains(t, err.Error(), tt.id)
			assert.Contains(t, err.Error(), "Minecraft")
		})
	}
}

func TestSelect_NoStableEntry(t *testing.T) {
	catalog := []model.PlatformVersion{{ID: "24w10a"}}
	_, err := Select(catalog, Policy{Kind: Stable})
	assert.ErrorIs(t, err, model.ErrNoMatchingVersion)

	_, err = Select([]model.LoaderVersion{}, Policy{Kind: PreRelease})
	assert.ErrorIs(t, err, model.ErrNoMatchingVersion)
}

func TestFilter(t *testing.T) {
	stable := Filter(gameCatalog(), false)
	require.Len(t, stable, 2)
	assert.Equal(t, "1.20.4", stable[0].ID)

	all := Filter(gameCatalog(), true)
	assert.Len(t, all, 4)
}

func TestParsePolicies(t *testing.T) {
	tests := []struct {
		input    string
		platform Policy
		loader   Policy
	}{
		{"", Policy{Kind: Stable}, Policy{Kind: Stable}},
		{"Stable", Policy{Kind: Stable}, Policy{Kind: Stable}},
		{"snapshot", Policy{Kind: PreRelease}, ExplicitPolicy("snapshot")},
		{"BETA", ExplicitPolicy("BETA"), Policy{Kind: PreRelease}},
		{" 1.20.4 ", ExplicitPolicy("1.20.4"), ExplicitPolicy("1.20.4")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.platform, ParsePlatformPolicy(tt.input))
			assert.Equal(t, tt.loader, ParseLoaderPolicy(tt.input))
		})
	}
}

func TestSelect_ExplicitLoaderUsesNormalizedForm(t *testing.T) {
	catalog := []model.LoaderVersion{model.MustLoaderVersion("v0.18")}

	v, err := Select(catalog, ExplicitPolicy("0.18.0"))
	require.NoError(t, err)
	assert.Equal(t, "0.18.0", v.Identifier())

	_, err = Select(catalog, ExplicitPolicy("v0.18"))
	var nf *model.NotFoundError
	assert.True(t, errors.As(err, &nf))
}
