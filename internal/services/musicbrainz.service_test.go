package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"chartintel/config"
	"chartintel/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMusicBrainzService_Artist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "chartintel/test ( ops@example.com )", r.Header.Get("User-Agent"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/artist":
			assert.Equal(t, `artist:"Alvvays"`, r.URL.Query().Get("query"))
			_, _ = w.Write([]byte(`{"artists":[
				{"id":"mb-1","name":"Alvvays","sort-name":"Alvvays","type":"Group","country":"CA","score":100}
			]}`))
		case "/artist/mb-1":
			assert.Equal(t, "url-rels+label-rels", r.URL.Query().Get("inc"))
			_, _ = w.Write([]byte(`{"id":"mb-1","name":"Alvvays","relations":[
				{"type":"free streaming","target-type":"url",
				 "url":{"resource":"https://open.spotify.com/artist/3Wf"}},
				{"type":"last.fm","target-type":"url",
				 "url":{"resource":"https://www.last.fm/music/Alvvays"}},
				{"type":"recording contract","target-type":"label",
				 "label":{"id":"l-1","name":"Polyvinyl"}}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfg := config.Config{GeneralVersion: "test", MusicBrainzContact: "ops@example.com"}
	service := NewMusicBrainzServiceWithBaseURL(server.URL, musicBrainzUserAgent(cfg))

	results, err := service.SearchArtists(context.Background(), "Alvvays")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "mb-1", results[0].ID)
	assert.Equal(t, 100, results[0].Score)
	assert.Equal(t, "CA", results[0].Country)

	artist, err := service.GetArtist(context.Background(), "mb-1")
	require.NoError(t, err)
	require.NotNil(t, artist)
	assert.Equal(t, []types.RegistryRelation{
		{Type: "free streaming", TargetType: "url", URL: "https://open.spotify.com/artist/3Wf"},
		{Type: "last.fm", TargetType: "url", URL: "https://www.last.fm/music/Alvvays"},
		{Type: "recording contract", TargetType: "label", LabelName: "Polyvinyl"},
	}, artist.Relations)
}

func TestMusicBrainzUserAgent(t *testing.T) {
	agent := musicBrainzUserAgent(config.Config{MusicBrainzContact: "ops@example.com"})
	assert.Equal(t, "chartintel/dev ( ops@example.com )", agent)
}

func TestMusicBrainzService_RequestsAreSpacedOneSecondApart(t *testing.T) {
	var (
		mu       sync.Mutex
		arrivals []time.Time
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"artists":[]}`))
	}))
	defer server.Close()

	service := NewMusicBrainzServiceWithBaseURL(server.URL, "chartintel/test ( ops@example.com )")

	const calls = 3
	for i := 0; i < calls; i++ {
		_, err := service.SearchArtists(context.Background(), "Alvvays")
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, arrivals, calls)
	for i := 1; i < calls; i++ {
		// Loopback transit time varies by a few milliseconds per request.
		gap := arrivals[i].Sub(arrivals[i-1])
		assert.GreaterOrEqual(t, gap, MusicBrainzRequestInterval-10*time.Millisecond, "request %d", i)
	}
}
