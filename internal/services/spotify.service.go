package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"chartintel/config"
	"chartintel/internal/types"
	"chartintel/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyAPIBaseURL  = "https://api.spotify.com/v1"
	spotifyTokenURL    = "https://accounts.spotify.com/api/token"
	spotifySearchLimit = 10
)

// SpotifyService is the streaming catalog client. It authenticates with the
// client credentials grant; the token source caches the token and refreshes
// it on expiry under its own lock, so one service may be used concurrently.
type SpotifyService struct {
	http    *providerClient
	enabled bool
	log     logger.Logger
}

var (
	_ types.ArtistSearcher[types.StreamingArtist] = (*SpotifyService)(nil)
	_ types.ArtistGetter[types.StreamingArtist]   = (*SpotifyService)(nil)
)

func NewSpotifyService(cfg config.Config) *SpotifyService {
	return NewSpotifyServiceWithURLs(
		cfg.SpotifyClientID,
		cfg.SpotifyClientSecret,
		spotifyAPIBaseURL,
		spotifyTokenURL,
	)
}

// NewSpotifyServiceWithURLs points the client at other API and token
// endpoints.
func NewSpotifyServiceWithURLs(clientID, clientSecret, baseURL, tokenURL string) *SpotifyService {
	log := logger.New("SpotifyService")

	if clientID == "" || clientSecret == "" {
		log.Warn("Spotify credentials missing, streaming lookups return no data")
		return &SpotifyService{
			http: newProviderClient(types.ProviderSpotify, nil, SpotifyRequestInterval, baseURL, ""),
			log:  log,
		}
	}

	credentials := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	tokenCtx := context.WithValue(
		context.Background(),
		oauth2.HTTPClient,
		&http.Client{Timeout: providerTimeout},
	)

	return &SpotifyService{
		http: newProviderClient(
			types.ProviderSpotify,
			credentials.Client(tokenCtx),
			SpotifyRequestInterval,
			baseURL,
			"",
		),
		enabled: true,
		log:     log,
	}
}

func (s *SpotifyService) Enabled() bool {
	return s.enabled
}

type spotifyImage struct {
	URL string `json:"url"`
}

type spotifyArtist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Followers struct {
		Total int64 `json:"total"`
	} `json:"followers"`
	Popularity int            `json:"popularity"`
	Genres     []string       `json:"genres"`
	Images     []spotifyImage `json:"images"`
}

type spotifyTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
	DurationMs int    `json:"duration_ms"`
	Artists    []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name                 string         `json:"name"`
		ReleaseDate          string         `json:"release_date"`
		ReleaseDatePrecision string         `json:"release_date_precision"`
		Images               []spotifyImage `json:"images"`
	} `json:"album"`
}

type spotifySearchResponse struct {
	Artists struct {
		Items []spotifyArtist `json:"items"`
	} `json:"artists"`
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

func (s *SpotifyService) SearchArtists(ctx context.Context, name string) ([]types.StreamingArtist, error) {
	if !s.enabled || name == "" {
		return nil, nil
	}

	params := url.Values{
		"q":     {name},
		"type":  {"artist"},
		"limit": {strconv.Itoa(spotifySearchLimit)},
	}

	var resp spotifySearchResponse
	found, err := s.http.getJSON(ctx, "/search", params, &resp)
	if err != nil || !found {
		return nil, err
	}

	artists := make([]types.StreamingArtist, 0, len(resp.Artists.Items))
	for _, item := range resp.Artists.Items {
		artists = append(artists, mapSpotifyArtist(item))
	}
	return artists, nil
}

func (s *SpotifyService) GetArtist(ctx context.Context, id string) (*types.StreamingArtist, error) {
	if !s.enabled || id == "" {
		return nil, nil
	}

	var resp spotifyArtist
	found, err := s.http.getJSON(ctx, "/artists/"+url.PathEscape(id), nil, &resp)
	if err != nil || !found || resp.ID == "" {
		return nil, err
	}

	artist := mapSpotifyArtist(resp)
	return &artist, nil
}

// SearchTracks searches by track title narrowed to an artist name.
func (s *SpotifyService) SearchTracks(
	ctx context.Context,
	track, artist string,
) ([]types.StreamingTrack, error) {
	if !s.enabled || track == "" {
		return nil, nil
	}

	query := fmt.Sprintf("track:%s", track)
	if artist != "" {
		query += fmt.Sprintf(" artist:%s", artist)
	}

	params := url.Values{
		"q":     {query},
		"type":  {"track"},
		"limit": {strconv.Itoa(spotifySearchLimit)},
	}

	var resp spotifySearchResponse
	found, err := s.http.getJSON(ctx, "/search", params, &resp)
	if err != nil || !found {
		return nil, err
	}

	tracks := make([]types.StreamingTrack, 0, len(resp.Tracks.Items))
	for _, item := range resp.Tracks.Items {
		tracks = append(tracks, mapSpotifyTrack(item))
	}
	return tracks, nil
}

func (s *SpotifyService) GetTrack(ctx context.Context, id string) (*types.StreamingTrack, error) {
	if !s.enabled || id == "" {
		return nil, nil
	}

	var resp spotifyTrack
	found, err := s.http.getJSON(ctx, "/tracks/"+url.PathEscape(id), nil, &resp)
	if err != nil || !found || resp.ID == "" {
		return nil, err
	}

	track := mapSpotifyTrack(resp)
	return &track, nil
}

func mapSpotifyArtist(item spotifyArtist) types.StreamingArtist {
	return types.StreamingArtist{
		ID:         item.ID,
		Name:       utils.CleanName(item.Name),
		Followers:  item.Followers.Total,
		Popularity: item.Popularity,
		Genres:     item.Genres,
		Images:     spotifyImageURLs(item.Images),
	}
}

func mapSpotifyTrack(item spotifyTrack) types.StreamingTrack {
	names := make([]string, 0, len(item.Artists))
	for _, artist := range item.Artists {
		names = append(names, utils.CleanName(artist.Name))
	}

	return types.StreamingTrack{
		ID:                   item.ID,
		Name:                 utils.CleanName(item.Name),
		ArtistNames:          names,
		Popularity:           item.Popularity,
		Album:                item.Album.Name,
		ReleaseDate:          item.Album.ReleaseDate,
		ReleaseDatePrecision: item.Album.ReleaseDatePrecision,
		DurationMs:           item.DurationMs,
		Images:               spotifyImageURLs(item.Album.Images),
	}
}

func spotifyImageURLs(images []spotifyImage) []string {
	urls := make([]string, 0, len(images))
	for _, image := range images {
		if image.URL != "" {
			urls = append(urls, image.URL)
		}
	}
	return urls
}
