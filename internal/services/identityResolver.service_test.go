package services

import (
	"context"
	"errors"
	"testing"

	"chartintel/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	search    map[string][]types.RegistryArtist
	records   map[string]*types.RegistryArtist
	searchErr error
	searches  int
}

func (f *fakeRegistry) SearchArtists(ctx context.Context, name string) ([]types.RegistryArtist, error) {
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.search[name], nil
}

func (f *fakeRegistry) GetArtist(ctx context.Context, id string) (*types.RegistryArtist, error) {
	return f.records[id], nil
}

func TestIdentityResolverService_ResolveExternalID(t *testing.T) {
	registry := &fakeRegistry{
		search: map[string][]types.RegistryArtist{
			"Alvvays": {{ID: "mb-1", Score: 100}, {ID: "mb-9", Score: 40}},
		},
	}
	resolver := NewIdentityResolverService(registry, nil)

	id, err := resolver.ResolveExternalID(context.Background(), "Alvvays")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "mb-1", *id)

	missing, err := resolver.ResolveExternalID(context.Background(), "Nobody")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	blank, err := resolver.ResolveExternalID(context.Background(), "  ")
	assert.NoError(t, err)
	assert.Nil(t, blank)
	assert.Equal(t, 2, registry.searches)
}

func TestIdentityResolverService_ResolveExternalID_Error(t *testing.T) {
	registry := &fakeRegistry{searchErr: errors.New("registry unavailable")}
	resolver := NewIdentityResolverService(registry, nil)

	id, err := resolver.ResolveExternalID(context.Background(), "Alvvays")
	assert.Error(t, err)
	assert.Nil(t, id)
}

func TestIdentityResolverService_BridgeExternalIDs(t *testing.T) {
	registry := &fakeRegistry{
		records: map[string]*types.RegistryArtist{
			"mb-1": {
				ID: "mb-1",
				Relations: []types.RegistryRelation{
					{Type: "free streaming", URL: "https://open.spotify.com/artist/3Wf"},
					{Type: "last.fm", URL: "https://www.last.fm/music/Japanese+Breakfast"},
					{Type: "recording contract", LabelName: "Dead Oceans"},
				},
			},
		},
	}
	resolver := NewIdentityResolverService(registry, nil)

	bridged, err := resolver.BridgeExternalIDs(context.Background(), "mb-1")
	require.NoError(t, err)
	require.NotNil(t, bridged)

	assert.Equal(t, "3Wf", *bridged.SpotifyID)
	assert.Equal(t, "Japanese Breakfast", *bridged.LastFMID)
	assert.Equal(t, "mb-1", *bridged.ListenBrainzID)
	assert.Equal(t, "Dead Oceans", bridged.Label)

	unknown, err := resolver.BridgeExternalIDs(context.Background(), "mb-404")
	assert.NoError(t, err)
	assert.Nil(t, unknown)
}

func TestBridgeRelations(t *testing.T) {
	tests := []struct {
		name      string
		relations []types.RegistryRelation
		spotify   string
		lastfm    string
		label     string
	}{
		{
			name:      "no relations",
			relations: nil,
		},
		{
			name: "first match wins",
			relations: []types.RegistryRelation{
				{URL: "https://open.spotify.com/artist/first"},
				{URL: "https://open.spotify.com/artist/second"},
				{LabelName: "Sub Pop"},
				{LabelName: "Matador"},
			},
			spotify: "first",
			label:   "Sub Pop",
		},
		{
			name: "ignores other spotify resources",
			relations: []types.RegistryRelation{
				{URL: "https://open.spotify.com/album/xyz"},
				{URL: "https://www.last.fm/music/Snail%20Mail/+wiki"},
			},
			lastfm: "Snail Mail",
		},
		{
			name: "ignores unrelated hosts",
			relations: []types.RegistryRelation{
				{URL: "https://example.com/artist/abc"},
				{URL: "https://www.last.fm/user/someone"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridged := BridgeRelations("mb-1", tt.relations)

			if tt.spotify == "" {
				assert.Nil(t, bridged.SpotifyID)
			} else {
				require.NotNil(t, bridged.SpotifyID)
				assert.Equal(t, tt.spotify, *bridged.SpotifyID)
			}

			if tt.lastfm == "" {
				assert.Nil(t, bridged.LastFMID)
			} else {
				require.NotNil(t, bridged.LastFMID)
				assert.Equal(t, tt.lastfm, *bridged.LastFMID)
			}

			assert.Equal(t, tt.label, bridged.Label)
			assert.Equal(t, "mb-1", *bridged.ListenBrainzID)
		})
	}
}
