package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"chartintel/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSpotifyTestServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	tokenRequests := &atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("type") {
		case "artist":
			assert.Equal(t, "Alvvays", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"artists":{"items":[
				{"id":"3Wf","name":"Alvvays","followers":{"total":412000},"popularity":61,
				 "genres":["indie pop"],"images":[{"url":"https://img/1"}]}
			]}}`))
		case "track":
			assert.Equal(t, "track:Archie, Marry Me artist:Alvvays", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"tracks":{"items":[
				{"id":"t1","name":"Archie, Marry Me","popularity":58,"duration_ms":182000,
				 "artists":[{"id":"3Wf","name":"Alvvays"}],
				 "album":{"name":"Alvvays","release_date":"2014-07-22","release_date_precision":"day",
				          "images":[{"url":"https://img/a"}]}}
			]}}`))
		}
	})
	mux.HandleFunc("/v1/artists/3Wf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"3Wf","name":"Alvvays","followers":{"total":412000},"popularity":61}`))
	})
	mux.HandleFunc("/v1/artists/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server, tokenRequests
}

func TestSpotifyService_SearchArtists(t *testing.T) {
	server, tokenRequests := newSpotifyTestServer(t)
	service := NewSpotifyServiceWithURLs("id", "secret", server.URL+"/v1", server.URL+"/token")

	artists, err := service.SearchArtists(context.Background(), "Alvvays")
	require.NoError(t, err)
	require.Len(t, artists, 1)

	assert.Equal(t, types.StreamingArtist{
		ID:         "3Wf",
		Name:       "Alvvays",
		Followers:  412000,
		Popularity: 61,
		Genres:     []string{"indie pop"},
		Images:     []string{"https://img/1"},
	}, artists[0])

	_, err = service.GetArtist(context.Background(), "3Wf")
	require.NoError(t, err)
	assert.Equal(t, int32(1), tokenRequests.Load(), "token is cached between requests")
}

func TestSpotifyService_GetArtist(t *testing.T) {
	server, _ := newSpotifyTestServer(t)
	service := NewSpotifyServiceWithURLs("id", "secret", server.URL+"/v1", server.URL+"/token")

	artist, err := service.GetArtist(context.Background(), "3Wf")
	require.NoError(t, err)
	require.NotNil(t, artist)
	assert.Equal(t, int64(412000), artist.Followers)

	missing, err := service.GetArtist(context.Background(), "unknown")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	_, err = service.GetArtist(context.Background(), "broken")
	var providerErr *types.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, types.ProviderSpotify, providerErr.Provider)
	assert.Equal(t, http.StatusBadGateway, providerErr.StatusCode)
}

func TestSpotifyService_SearchTracks(t *testing.T) {
	server, _ := newSpotifyTestServer(t)
	service := NewSpotifyServiceWithURLs("id", "secret", server.URL+"/v1", server.URL+"/token")

	tracks, err := service.SearchTracks(context.Background(), "Archie, Marry Me", "Alvvays")
	require.NoError(t, err)
	require.Len(t, tracks, 1)

	track := tracks[0]
	assert.Equal(t, "t1", track.ID)
	assert.Equal(t, []string{"Alvvays"}, track.ArtistNames)
	assert.Equal(t, "2014-07-22", track.ReleaseDate)
	assert.Equal(t, "day", track.ReleaseDatePrecision)
	assert.Equal(t, 182000, track.DurationMs)
	assert.Equal(t, []string{"https://img/a"}, track.Images)
}

func TestSpotifyService_MissingCredentials(t *testing.T) {
	server, tokenRequests := newSpotifyTestServer(t)
	service := NewSpotifyServiceWithURLs("", "", server.URL+"/v1", server.URL+"/token")

	assert.False(t, service.Enabled())

	artists, err := service.SearchArtists(context.Background(), "Alvvays")
	assert.NoError(t, err)
	assert.Nil(t, artists)

	track, err := service.GetTrack(context.Background(), "t1")
	assert.NoError(t, err)
	assert.Nil(t, track)
	assert.Zero(t, tokenRequests.Load())
}
