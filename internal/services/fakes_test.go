package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"chartintel/internal/repositories"
	"chartintel/internal/scoring"
	"chartintel/internal/testutil"
	"chartintel/internal/types"
)

type fakeStreaming struct {
	artists       map[string]*types.StreamingArtist
	artistResults map[string][]types.StreamingArtist
	search        map[string][]types.StreamingTrack
	tracks        map[string]*types.StreamingTrack
}

func (f *fakeStreaming) SearchArtists(ctx context.Context, name string) ([]types.StreamingArtist, error) {
	return f.artistResults[name], nil
}

func (f *fakeStreaming) GetArtist(ctx context.Context, id string) (*types.StreamingArtist, error) {
	return f.artists[id], nil
}

func (f *fakeStreaming) SearchTracks(ctx context.Context, track, artist string) ([]types.StreamingTrack, error) {
	return f.search[track], nil
}

func (f *fakeStreaming) GetTrack(ctx context.Context, id string) (*types.StreamingTrack, error) {
	return f.tracks[id], nil
}

type fakeScrobbling struct {
	chart         []types.ScrobbleArtist
	chartErr      error
	byTag         map[string][]types.ScrobbleArtist
	info          map[string]*types.ScrobbleArtist
	artistResults map[string][]types.ScrobbleArtist
	trackChart    []types.ScrobbleTrack
	tracksByTag   map[string][]types.ScrobbleTrack
	trackInfo     map[string]*types.ScrobbleTrack
}

func (f *fakeScrobbling) SearchArtists(ctx context.Context, name string) ([]types.ScrobbleArtist, error) {
	return f.artistResults[name], nil
}

func (f *fakeScrobbling) GetArtist(ctx context.Context, name string) (*types.ScrobbleArtist, error) {
	return f.info[name], nil
}

func (f *fakeScrobbling) GetTopArtists(
	ctx context.Context,
	limit int,
	window types.TimeWindow,
) ([]types.ScrobbleArtist, error) {
	return truncate(f.chart, limit), f.chartErr
}

func (f *fakeScrobbling) GetTopArtistsByTag(
	ctx context.Context,
	tag string,
	limit int,
) ([]types.ScrobbleArtist, error) {
	return truncate(f.byTag[tag], limit), nil
}

func (f *fakeScrobbling) GetTopTracks(ctx context.Context, limit int) ([]types.ScrobbleTrack, error) {
	return truncate(f.trackChart, limit), nil
}

func (f *fakeScrobbling) GetTopTracksByTag(
	ctx context.Context,
	tag string,
	limit int,
) ([]types.ScrobbleTrack, error) {
	return truncate(f.tracksByTag[tag], limit), nil
}

func (f *fakeScrobbling) GetTrack(ctx context.Context, artist, track string) (*types.ScrobbleTrack, error) {
	return f.trackInfo[strings.ToLower(artist+"/"+track)], nil
}

type fakeListens struct {
	stats map[string]*types.ListenArtist
	chart []types.ListenArtist
}

func (f *fakeListens) GetArtist(ctx context.Context, mbid string) (*types.ListenArtist, error) {
	return f.stats[mbid], nil
}

func (f *fakeListens) GetTopArtists(
	ctx context.Context,
	limit int,
	window types.TimeWindow,
) ([]types.ListenArtist, error) {
	return truncate(f.chart, limit), nil
}

type fakeIdentity struct {
	resolve map[string]string
	bridge  map[string]*BridgedIDs
}

func (f *fakeIdentity) ResolveExternalID(ctx context.Context, name string) (*string, error) {
	id, ok := f.resolve[name]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (f *fakeIdentity) BridgeExternalIDs(ctx context.Context, registryID string) (*BridgedIDs, error) {
	return f.bridge[registryID], nil
}

func strPtr(s string) *string { return &s }

// pipelineFixture wires both aggregators and the scoring service over one
// in-memory store.
type pipelineFixture struct {
	repos     repositories.Repository
	streaming *fakeStreaming
	scrobble  *fakeScrobbling
	listens   *fakeListens
	identity  *fakeIdentity
	artists   *ArtistAggregatorService
	tracks    *TrackAggregatorService
	scoring   *ScoringService
	now       time.Time
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	f := &pipelineFixture{
		repos: repositories.New(db),
		streaming: &fakeStreaming{
			artists:       map[string]*types.StreamingArtist{},
			artistResults: map[string][]types.StreamingArtist{},
			search:        map[string][]types.StreamingTrack{},
			tracks:        map[string]*types.StreamingTrack{},
		},
		scrobble: &fakeScrobbling{
			byTag:         map[string][]types.ScrobbleArtist{},
			info:          map[string]*types.ScrobbleArtist{},
			artistResults: map[string][]types.ScrobbleArtist{},
			tracksByTag:   map[string][]types.ScrobbleTrack{},
			trackInfo:     map[string]*types.ScrobbleTrack{},
		},
		listens:  &fakeListens{stats: map[string]*types.ListenArtist{}},
		identity: &fakeIdentity{resolve: map[string]string{}, bridge: map[string]*BridgedIDs{}},
		now:      time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	}

	transaction := NewTransactionService(db)
	options := AggregatorOptions{Thresholds: scoring.DefaultThresholds()}

	f.artists = NewArtistAggregatorService(
		f.repos.Artist,
		f.streaming,
		f.scrobble,
		f.listens,
		f.identity,
		transaction,
		options,
	)
	f.tracks = NewTrackAggregatorService(f.repos.Track, f.artists, f.streaming, f.scrobble, options)
	f.scoring = NewScoringService(f.repos.Artist, f.repos.Track, transaction, options.Thresholds)

	clock := func() time.Time { return f.now }
	f.artists.now = clock
	f.tracks.now = clock
	f.scoring.now = clock

	return f
}

// seedIndieAndMajor registers one artist under each classification with
// every provider.
func (f *pipelineFixture) seedIndieAndMajor() {
	f.identity.resolve["Alvvays"] = "mb-1"
	f.identity.bridge["mb-1"] = &BridgedIDs{
		SpotifyID:      strPtr("sp-1"),
		LastFMID:       strPtr("Alvvays"),
		ListenBrainzID: strPtr("mb-1"),
		Label:          "Polyvinyl",
	}
	f.streaming.artists["sp-1"] = &types.StreamingArtist{
		ID:         "sp-1",
		Name:       "Alvvays",
		Followers:  412_000,
		Popularity: 61,
		Genres:     []string{"indie pop"},
	}
	f.listens.stats["mb-1"] = &types.ListenArtist{MBID: "mb-1", ListenCount: 91_000, ListenerCount: 2_400}
	f.scrobble.info["Alvvays"] = &types.ScrobbleArtist{Name: "Alvvays", Listeners: 812_000, Playcount: 41_000_000}

	f.identity.resolve["Big Star"] = "mb-2"
	f.identity.bridge["mb-2"] = &BridgedIDs{SpotifyID: strPtr("sp-2"), Label: "Universal Music"}
	f.streaming.artists["sp-2"] = &types.StreamingArtist{ID: "sp-2", Name: "Big Star", Followers: 3_000_000, Popularity: 88}
	f.scrobble.info["Big Star"] = &types.ScrobbleArtist{Name: "Big Star", Listeners: 2_500_000, Playcount: 90_000_000}
}
