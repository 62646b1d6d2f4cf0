package services

import (
	"context"
	"net/url"
	"strconv"

	"chartintel/config"
	"chartintel/internal/types"
	"chartintel/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
)

const listenBrainzBaseURL = "https://api.listenbrainz.org/1"

// ListenBrainzService reads listen statistics. Statistics are public; the
// token only raises the provider's own rate limits.
type ListenBrainzService struct {
	http *providerClient
	log  logger.Logger
}

var (
	_ types.ArtistGetter[types.ListenArtist]    = (*ListenBrainzService)(nil)
	_ types.TopArtistLister[types.ListenArtist] = (*ListenBrainzService)(nil)
)

func NewListenBrainzService(cfg config.Config) *ListenBrainzService {
	return NewListenBrainzServiceWithBaseURL(cfg.ListenBrainzToken, listenBrainzBaseURL)
}

func NewListenBrainzServiceWithBaseURL(token, baseURL string) *ListenBrainzService {
	client := newProviderClient(
		types.ProviderListenBrainz,
		nil,
		ListenBrainzRequestInterval,
		baseURL,
		"",
	)
	if token != "" {
		client.headers.Set("Authorization", "Token "+token)
	}

	return &ListenBrainzService{
		http: client,
		log:  logger.New("ListenBrainzService"),
	}
}

type lbArtistListenersResponse struct {
	Payload struct {
		ArtistMBID       string `json:"artist_mbid"`
		ArtistName       string `json:"artist_name"`
		TotalListenCount int64  `json:"total_listen_count"`
		TotalUserCount   int64  `json:"total_user_count"`
		Listeners        []struct {
			UserName    string `json:"user_name"`
			ListenCount int64  `json:"listen_count"`
		} `json:"listeners"`
	} `json:"payload"`
}

type lbSitewideArtistsResponse struct {
	Payload struct {
		Artists []struct {
			ArtistMBID  string `json:"artist_mbid"`
			ArtistName  string `json:"artist_name"`
			ListenCount int64  `json:"listen_count"`
		} `json:"artists"`
	} `json:"payload"`
}

// GetArtist returns all-time listener statistics for a registry ID.
func (s *ListenBrainzService) GetArtist(ctx context.Context, mbid string) (*types.ListenArtist, error) {
	if mbid == "" {
		return nil, nil
	}

	params := url.Values{"range": {string(types.WindowAllTime)}}

	var resp lbArtistListenersResponse
	found, err := s.http.getJSON(ctx, "/stats/artist/"+url.PathEscape(mbid)+"/listeners", params, &resp)
	if err != nil || !found {
		return nil, err
	}

	listeners := resp.Payload.TotalUserCount
	if listeners == 0 {
		listeners = int64(len(resp.Payload.Listeners))
	}

	artistMBID := resp.Payload.ArtistMBID
	if artistMBID == "" {
		artistMBID = mbid
	}

	return &types.ListenArtist{
		MBID:          artistMBID,
		Name:          utils.CleanName(resp.Payload.ArtistName),
		ListenCount:   resp.Payload.TotalListenCount,
		ListenerCount: listeners,
	}, nil
}

// GetTopArtists returns the sitewide artist chart for window. Sitewide
// entries have no listener count.
func (s *ListenBrainzService) GetTopArtists(
	ctx context.Context,
	limit int,
	window types.TimeWindow,
) ([]types.ListenArtist, error) {
	if window == "" {
		window = types.WindowWeek
	}

	params := url.Values{
		"count": {strconv.Itoa(limit)},
		"range": {string(window)},
	}

	var resp lbSitewideArtistsResponse
	found, err := s.http.getJSON(ctx, "/stats/sitewide/artists", params, &resp)
	if err != nil || !found {
		return nil, err
	}

	artists := make([]types.ListenArtist, 0, len(resp.Payload.Artists))
	for _, item := range resp.Payload.Artists {
		if item.ArtistName == "" {
			continue
		}
		artists = append(artists, types.ListenArtist{
			MBID:        item.ArtistMBID,
			Name:        utils.CleanName(item.ArtistName),
			ListenCount: item.ListenCount,
		})
	}

	return truncate(artists, limit), nil
}
