package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"chartintel/config"
	"chartintel/internal/types"
	"chartintel/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	lastFMBaseURL = "https://ws.audioscrobbler.com/2.0"

	// Error codes Last.fm reports inside a 200 response.
	lastFMErrorNotFound    = 6
	lastFMErrorRateLimited = 29
)

// LastFMService is the scrobbling client: charts, tag charts and per
// artist or track statistics.
type LastFMService struct {
	http   *providerClient
	apiKey string
	log    logger.Logger
}

var (
	_ types.ArtistSearcher[types.ScrobbleArtist]  = (*LastFMService)(nil)
	_ types.ArtistGetter[types.ScrobbleArtist]    = (*LastFMService)(nil)
	_ types.TopArtistLister[types.ScrobbleArtist] = (*LastFMService)(nil)
)

func NewLastFMService(cfg config.Config) *LastFMService {
	return NewLastFMServiceWithBaseURL(cfg.LastFMAPIKey, lastFMBaseURL)
}

func NewLastFMServiceWithBaseURL(apiKey, baseURL string) *LastFMService {
	log := logger.New("LastFMService")
	if apiKey == "" {
		log.Warn("Last.fm API key missing, scrobbling lookups return no data")
	}

	return &LastFMService{
		http:   newProviderClient(types.ProviderLastFM, nil, LastFMRequestInterval, baseURL, ""),
		apiKey: apiKey,
		log:    log,
	}
}

func (s *LastFMService) Enabled() bool {
	return s.apiKey != ""
}

type lastFMError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

type lastFMTag struct {
	Name string `json:"name"`
}

type lastFMArtist struct {
	Name      string  `json:"name"`
	MBID      string  `json:"mbid"`
	URL       string  `json:"url"`
	Listeners flexInt `json:"listeners"`
	Playcount flexInt `json:"playcount"`
	Stats     struct {
		Listeners flexInt `json:"listeners"`
		Playcount flexInt `json:"playcount"`
	} `json:"stats"`
	Tags struct {
		Tag []lastFMTag `json:"tag"`
	} `json:"tags"`
}

type lastFMTrack struct {
	Name      string  `json:"name"`
	MBID      string  `json:"mbid"`
	URL       string  `json:"url"`
	Duration  flexInt `json:"duration"`
	Listeners flexInt `json:"listeners"`
	Playcount flexInt `json:"playcount"`
	Artist    struct {
		Name string `json:"name"`
		MBID string `json:"mbid"`
	} `json:"artist"`
}

type lastFMResponse struct {
	lastFMError
	Artist  *lastFMArtist `json:"artist"`
	Track   *lastFMTrack  `json:"track"`
	Artists struct {
		Artist []lastFMArtist `json:"artist"`
	} `json:"artists"`
	TopArtists struct {
		Artist []lastFMArtist `json:"artist"`
	} `json:"topartists"`
	Tracks struct {
		Track []lastFMTrack `json:"track"`
	} `json:"tracks"`
	Results struct {
		ArtistMatches struct {
			Artist []lastFMArtist `json:"artist"`
		} `json:"artistmatches"`
	} `json:"results"`
}

// call runs one API method. Not-found, whether by status or by error code,
// returns (nil, nil).
func (s *LastFMService) call(
	ctx context.Context,
	method string,
	params url.Values,
) (*lastFMResponse, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("method", method)
	params.Set("api_key", s.apiKey)
	params.Set("format", "json")

	var resp lastFMResponse
	found, err := s.http.getJSON(ctx, "/", params, &resp)
	if err != nil || !found {
		return nil, err
	}

	switch resp.Code {
	case 0:
		return &resp, nil
	case lastFMErrorNotFound:
		return nil, nil
	case lastFMErrorRateLimited:
		return nil, s.http.providerError(429, fmt.Errorf("%s: %s", method, resp.Message))
	default:
		return nil, s.http.providerError(0, fmt.Errorf("%s: error %d: %s", method, resp.Code, resp.Message))
	}
}

func (s *LastFMService) SearchArtists(ctx context.Context, name string) ([]types.ScrobbleArtist, error) {
	if !s.Enabled() || name == "" {
		return nil, nil
	}

	resp, err := s.call(ctx, "artist.search", url.Values{"artist": {name}, "limit": {"10"}})
	if err != nil || resp == nil {
		return nil, err
	}

	return mapLastFMArtists(resp.Results.ArtistMatches.Artist), nil
}

// GetArtist looks an artist up by name, with autocorrection.
func (s *LastFMService) GetArtist(ctx context.Context, name string) (*types.ScrobbleArtist, error) {
	if !s.Enabled() || name == "" {
		return nil, nil
	}

	resp, err := s.call(ctx, "artist.getinfo", url.Values{"artist": {name}, "autocorrect": {"1"}})
	if err != nil || resp == nil || resp.Artist == nil || resp.Artist.Name == "" {
		return nil, err
	}

	artist := mapLastFMArtist(*resp.Artist)
	return &artist, nil
}

// GetTopArtists returns the global chart. Last.fm charts have no window, so
// window is ignored.
func (s *LastFMService) GetTopArtists(
	ctx context.Context,
	limit int,
	_ types.TimeWindow,
) ([]types.ScrobbleArtist, error) {
	if !s.Enabled() {
		return nil, nil
	}

	resp, err := s.call(ctx, "chart.gettopartists", url.Values{"limit": {strconv.Itoa(limit)}})
	if err != nil || resp == nil {
		return nil, err
	}

	return truncate(mapLastFMArtists(resp.Artists.Artist), limit), nil
}

// GetTopArtistsByTag returns the tag chart. Entries carry no listener
// counts; callers fetch those with GetArtist.
func (s *LastFMService) GetTopArtistsByTag(
	ctx context.Context,
	tag string,
	limit int,
) ([]types.ScrobbleArtist, error) {
	if !s.Enabled() || tag == "" {
		return nil, nil
	}

	resp, err := s.call(ctx, "tag.gettopartists", url.Values{
		"tag":   {tag},
		"limit": {strconv.Itoa(limit)},
	})
	if err != nil || resp == nil {
		return nil, err
	}

	return truncate(mapLastFMArtists(resp.TopArtists.Artist), limit), nil
}

func (s *LastFMService) GetTopTracks(ctx context.Context, limit int) ([]types.ScrobbleTrack, error) {
	if !s.Enabled() {
		return nil, nil
	}

	resp, err := s.call(ctx, "chart.gettoptracks", url.Values{"limit": {strconv.Itoa(limit)}})
	if err != nil || resp == nil {
		return nil, err
	}

	return truncate(mapLastFMTracks(resp.Tracks.Track), limit), nil
}

func (s *LastFMService) GetTopTracksByTag(
	ctx context.Context,
	tag string,
	limit int,
) ([]types.ScrobbleTrack, error) {
	if !s.Enabled() || tag == "" {
		return nil, nil
	}

	resp, err := s.call(ctx, "tag.gettoptracks", url.Values{
		"tag":   {tag},
		"limit": {strconv.Itoa(limit)},
	})
	if err != nil || resp == nil {
		return nil, err
	}

	return truncate(mapLastFMTracks(resp.Tracks.Track), limit), nil
}

func (s *LastFMService) GetTrack(
	ctx context.Context,
	artist, track string,
) (*types.ScrobbleTrack, error) {
	if !s.Enabled() || artist == "" || track == "" {
		return nil, nil
	}

	resp, err := s.call(ctx, "track.getinfo", url.Values{
		"artist":      {artist},
		"track":       {track},
		"autocorrect": {"1"},
	})
	if err != nil || resp == nil || resp.Track == nil || resp.Track.Name == "" {
		return nil, err
	}

	mapped := mapLastFMTrack(*resp.Track)
	return &mapped, nil
}

func mapLastFMArtist(item lastFMArtist) types.ScrobbleArtist {
	listeners, playcount := int64(item.Listeners), int64(item.Playcount)
	if item.Stats.Listeners > 0 || item.Stats.Playcount > 0 {
		listeners, playcount = int64(item.Stats.Listeners), int64(item.Stats.Playcount)
	}

	tags := make([]string, 0, len(item.Tags.Tag))
	for _, tag := range item.Tags.Tag {
		if tag.Name != "" {
			tags = append(tags, tag.Name)
		}
	}

	return types.ScrobbleArtist{
		Name:      utils.CleanName(item.Name),
		MBID:      item.MBID,
		URL:       item.URL,
		Listeners: listeners,
		Playcount: playcount,
		Tags:      tags,
	}
}

func mapLastFMArtists(items []lastFMArtist) []types.ScrobbleArtist {
	artists := make([]types.ScrobbleArtist, 0, len(items))
	for _, item := range items {
		if item.Name == "" {
			continue
		}
		artists = append(artists, mapLastFMArtist(item))
	}
	return artists
}

func mapLastFMTrack(item lastFMTrack) types.ScrobbleTrack {
	duration := int(item.Duration)
	// Chart entries report seconds, track.getinfo milliseconds.
	if duration > 0 && duration < 10_000 {
		duration *= 1000
	}

	return types.ScrobbleTrack{
		Name:       utils.CleanName(item.Name),
		ArtistName: utils.CleanName(item.Artist.Name),
		MBID:       item.MBID,
		URL:        item.URL,
		Listeners:  int64(item.Listeners),
		Playcount:  int64(item.Playcount),
		DurationMs: duration,
	}
}

func mapLastFMTracks(items []lastFMTrack) []types.ScrobbleTrack {
	tracks := make([]types.ScrobbleTrack, 0, len(items))
	for _, item := range items {
		if item.Name == "" || item.Artist.Name == "" {
			continue
		}
		tracks = append(tracks, mapLastFMTrack(item))
	}
	return tracks
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
