package models

import (
	"testing"
	"time"

	"chartintel/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedArtist_ExternalIDs(t *testing.T) {
	artist := NewUnifiedArtist("  Big Thief ")
	assert.Equal(t, "Big Thief", artist.Name)
	assert.True(t, artist.IsIndependent)

	assert.True(t, artist.SetExternalID(types.ProviderMusicBrainz, "mbid-1"))
	assert.Equal(t, "mbid-1", artist.ExternalID(types.ProviderMusicBrainz))
	assert.Equal(t, "mbid-1", artist.ExternalID(types.ProviderListenBrainz))

	assert.True(t, artist.SetExternalID(types.ProviderSpotify, "sp-1"))
	assert.False(t, artist.SetExternalID(types.ProviderSpotify, "sp-2"), "known id is kept")
	assert.Equal(t, "sp-1", artist.ExternalID(types.ProviderSpotify))

	assert.False(t, artist.SetExternalID(types.ProviderLastFM, " "))
	assert.Equal(t, "", artist.ExternalID(types.ProviderLastFM))
}

func TestUnifiedArtist_RecordScores(t *testing.T) {
	now := time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC)
	artist := NewUnifiedArtist("Alvvays")

	artist.RecordScores(55.5, 42.25, 12, now)

	require.NotNil(t, artist.ScoredAt)
	assert.Equal(t, now, *artist.ScoredAt)
	assert.Equal(t, 55.5, artist.CompositeScore)
	require.Len(t, artist.ScoreHistory, 1)
	assert.Equal(t, 12.0, artist.ScoreHistory[0].ReachScore)
}

func TestUnifiedArtist_BeforeCreate(t *testing.T) {
	artist := NewUnifiedArtist("Wednesday")
	require.NoError(t, artist.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, artist.ID)

	empty := NewUnifiedArtist("   ")
	assert.Error(t, empty.BeforeCreate(nil))
}

func TestUnifiedTrack_BeforeCreate(t *testing.T) {
	artist := NewUnifiedArtist("Wednesday")
	require.NoError(t, artist.BeforeCreate(nil))

	track := NewUnifiedTrack("Chosen to Deserve", artist)
	require.NoError(t, track.BeforeCreate(nil))
	assert.Equal(t, artist.ID, track.ArtistID)
	assert.Equal(t, "Wednesday", track.ArtistName)

	orphan := &UnifiedTrack{Name: "Bull Believer"}
	assert.Error(t, orphan.BeforeCreate(nil))
}
