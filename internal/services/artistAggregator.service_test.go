package services

import (
	"context"
	"testing"
	"time"

	"chartintel/internal/models"
	"chartintel/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *pipelineFixture) artist(t *testing.T, name string) *models.UnifiedArtist {
	t.Helper()

	artist, err := f.repos.Artist.FindByName(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, artist, "artist %q not stored", name)
	return artist
}

func TestArtistAggregator_ImportFromTopChart(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedIndieAndMajor()
	f.scrobble.chart = []types.ScrobbleArtist{
		{Name: "Alvvays", Listeners: 812_000, Playcount: 41_000_000},
		{Name: "Big Star", Listeners: 2_500_000, Playcount: 90_000_000},
	}

	result, err := f.artists.ImportFromTopChart(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Processed: 2, Imported: 2}, result)

	indie := f.artist(t, "Alvvays")
	assert.Equal(t, "mb-1", *indie.RegistryID)
	assert.Equal(t, "sp-1", indie.ExternalID(types.ProviderSpotify))
	assert.Equal(t, "Alvvays", indie.ExternalID(types.ProviderLastFM))
	assert.Equal(t, "mb-1", indie.ExternalID(types.ProviderListenBrainz))
	assert.Equal(t, "Polyvinyl", indie.Label)
	assert.Equal(t, []string{"indie pop"}, []string(indie.Genres))
	assert.True(t, indie.IsIndependent)

	metrics := indie.CurrentMetrics()
	require.NotNil(t, metrics.Streaming)
	require.NotNil(t, metrics.Scrobbling)
	require.NotNil(t, metrics.ListenTracking)
	assert.Equal(t, int64(412_000), metrics.Streaming.Followers)
	assert.Equal(t, int64(812_000), metrics.Scrobbling.Listeners)
	assert.Equal(t, int64(91_000), metrics.ListenTracking.ListenCount)
	assert.Equal(t, f.now, metrics.Scrobbling.Timestamp.UTC())

	major := f.artist(t, "Big Star")
	assert.False(t, major.IsIndependent)
}

func TestArtistAggregator_ImportIsIdempotent(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedIndieAndMajor()
	f.scrobble.chart = []types.ScrobbleArtist{
		{Name: "Alvvays", Listeners: 812_000, Playcount: 41_000_000},
		{Name: "alvvays", Listeners: 812_000, Playcount: 41_000_000},
	}

	ctx := context.Background()
	_, err := f.artists.ImportFromTopChart(ctx, 50)
	require.NoError(t, err)
	first := f.artist(t, "Alvvays")

	_, err = f.artists.ImportFromTopChart(ctx, 50)
	require.NoError(t, err)

	all, err := f.repos.Artist.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first.ID, all[0].ID)

	ensured, err := f.artists.EnsureArtist(ctx, "ALVVAYS")
	require.NoError(t, err)
	assert.Equal(t, first.ID, ensured.ID)
}

func TestArtistAggregator_ImportByGenreCountsIndependentOnly(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedIndieAndMajor()
	// Tag charts carry no counts; figures come from the info lookup.
	f.scrobble.byTag["indie"] = []types.ScrobbleArtist{{Name: "Alvvays"}, {Name: "Big Star"}}

	result, err := f.artists.ImportByGenre(context.Background(), "indie", 50)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Processed: 2, Imported: 1}, result)

	major := f.artist(t, "Big Star")
	require.NotNil(t, major.CurrentMetrics().Scrobbling)
	assert.Equal(t, int64(2_500_000), major.CurrentMetrics().Scrobbling.Listeners)
	assert.False(t, major.IsIndependent)
}

func TestArtistAggregator_ImportFromListenTracking(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedIndieAndMajor()
	f.listens.chart = []types.ListenArtist{{MBID: "mb-1", Name: "Alvvays", ListenCount: 5_000}}

	result, err := f.artists.ImportFromListenTracking(context.Background(), 10, types.WindowMonth)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Processed: 1, Imported: 1}, result)

	artist := f.artist(t, "Alvvays")
	assert.Equal(t, "mb-1", *artist.RegistryID)
	assert.Equal(t, "sp-1", artist.ExternalID(types.ProviderSpotify))
	assert.Equal(t, int64(91_000), artist.CurrentMetrics().ListenTracking.ListenCount)
}

func TestArtistAggregator_EntityFailureDoesNotStopImport(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedIndieAndMajor()
	f.scrobble.chart = []types.ScrobbleArtist{
		{Name: "   ", Listeners: 10, Playcount: 10},
		{Name: "Alvvays", Listeners: 812_000, Playcount: 41_000_000},
	}

	result, err := f.artists.ImportFromTopChart(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Processed: 2, Imported: 1}, result)
}

func TestArtistAggregator_ChartFailure(t *testing.T) {
	f := newPipelineFixture(t)
	f.scrobble.chartErr = &types.ProviderError{Provider: types.ProviderLastFM, StatusCode: 503}

	result, err := f.artists.ImportFromTopChart(context.Background(), 50)
	assert.Error(t, err)
	assert.Zero(t, result)
}

func TestArtistAggregator_StopsOnCancellation(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedIndieAndMajor()
	f.scrobble.chart = []types.ScrobbleArtist{
		{Name: "Alvvays", Listeners: 812_000, Playcount: 41_000_000},
		{Name: "Big Star", Listeners: 2_500_000, Playcount: 90_000_000},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.artists.ImportFromTopChart(ctx, 50)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.Processed)
	assert.Zero(t, result.Imported)
}

func TestArtistAggregator_UpdateAllMetrics(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedIndieAndMajor()
	f.scrobble.chart = []types.ScrobbleArtist{
		{Name: "Alvvays", Listeners: 812_000, Playcount: 41_000_000},
		{Name: "Snail Mail", Listeners: 400_000, Playcount: 15_000_000},
	}

	ctx := context.Background()
	_, err := f.artists.ImportFromTopChart(ctx, 50)
	require.NoError(t, err)
	assert.Nil(t, f.artist(t, "Snail Mail").RegistryID)

	f.now = f.now.Add(8 * 24 * time.Hour)
	f.streaming.artists["sp-1"].Followers = 453_200
	f.identity.resolve["Snail Mail"] = "mb-3"

	result, err := f.artists.UpdateAllMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Processed: 2, Imported: 2}, result)

	streaming := f.artist(t, "Alvvays").CurrentMetrics().Streaming
	assert.Equal(t, int64(453_200), streaming.Followers)
	require.NotNil(t, streaming.FollowerGrowth)
	assert.InDelta(t, 10.0, *streaming.FollowerGrowth, 0.001)

	resolved := f.artist(t, "Snail Mail")
	require.NotNil(t, resolved.RegistryID)
	assert.Equal(t, "mb-3", *resolved.RegistryID)
}

func TestArtistAggregator_StreamingSearchFallback(t *testing.T) {
	f := newPipelineFixture(t)
	f.streaming.artistResults["Horsegirl"] = []types.StreamingArtist{
		{ID: "sp-tribute", Name: "Horsegirl Tribute Band", Followers: 90},
		{ID: "sp-h", Name: "HORSEGIRL", Followers: 41_000, Popularity: 44, Genres: []string{"chicago indie"}},
	}
	f.streaming.artistResults["Wet Leg"] = []types.StreamingArtist{
		{ID: "sp-other", Name: "Dry Cleaning", Followers: 200_000},
	}

	ctx := context.Background()
	matched, err := f.artists.EnsureArtist(ctx, "Horsegirl")
	require.NoError(t, err)
	unmatched, err := f.artists.EnsureArtist(ctx, "Wet Leg")
	require.NoError(t, err)

	stored := f.artist(t, matched.Name)
	assert.Equal(t, "sp-h", stored.ExternalID(types.ProviderSpotify))
	assert.Equal(t, []string{"chicago indie"}, []string(stored.Genres))
	metrics := stored.CurrentMetrics()
	require.NotNil(t, metrics.Streaming)
	assert.Equal(t, int64(41_000), metrics.Streaming.Followers)

	stored = f.artist(t, unmatched.Name)
	assert.Empty(t, stored.ExternalID(types.ProviderSpotify))
	assert.Nil(t, stored.CurrentMetrics().Streaming)
}

func TestArtistAggregator_ScrobblingSearchFallback(t *testing.T) {
	f := newPipelineFixture(t)
	f.scrobble.artistResults["Boygenius"] = []types.ScrobbleArtist{
		{Name: "boygenius", Listeners: 700_000},
	}
	f.scrobble.info["boygenius"] = &types.ScrobbleArtist{
		Name:      "boygenius",
		Listeners: 702_000,
		Playcount: 38_000_000,
	}

	_, err := f.artists.EnsureArtist(context.Background(), "Boygenius")
	require.NoError(t, err)

	stored := f.artist(t, "Boygenius")
	assert.Equal(t, "boygenius", stored.ExternalID(types.ProviderLastFM))
	metrics := stored.CurrentMetrics()
	require.NotNil(t, metrics.Scrobbling)
	assert.Equal(t, int64(702_000), metrics.Scrobbling.Listeners)
	assert.Equal(t, int64(38_000_000), metrics.Scrobbling.Playcount)
}

func TestBestNameMatch(t *testing.T) {
	name := func(a types.StreamingArtist) string { return a.Name }

	tests := []struct {
		name    string
		query   string
		results []types.StreamingArtist
		wantID  string
	}{
		{
			name:    "exact match beats earlier loose match",
			query:   "Horsegirl",
			results: []types.StreamingArtist{{ID: "a", Name: "Horsegirl Tribute"}, {ID: "b", Name: "horsegirl"}},
			wantID:  "b",
		},
		{
			name:    "leading article",
			query:   "The Beths",
			results: []types.StreamingArtist{{ID: "c", Name: "Beths"}},
			wantID:  "c",
		},
		{
			name:    "no verified result",
			query:   "Wet Leg",
			results: []types.StreamingArtist{{ID: "d", Name: "Dry Cleaning"}},
		},
		{
			name:  "no results",
			query: "Wet Leg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bestNameMatch(tt.query, tt.results, name)
			if tt.wantID == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}
