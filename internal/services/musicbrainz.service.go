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
	musicBrainzBaseURL     = "https://musicbrainz.org/ws/2"
	musicBrainzSearchLimit = 5
)

// MusicBrainzService is the metadata registry client. The registry allows
// one request per second and requires an identifying User-Agent.
type MusicBrainzService struct {
	http *providerClient
	log  logger.Logger
}

var (
	_ types.ArtistSearcher[types.RegistryArtist] = (*MusicBrainzService)(nil)
	_ types.ArtistGetter[types.RegistryArtist]   = (*MusicBrainzService)(nil)
)

func NewMusicBrainzService(cfg config.Config) *MusicBrainzService {
	return NewMusicBrainzServiceWithBaseURL(musicBrainzBaseURL, musicBrainzUserAgent(cfg))
}

func NewMusicBrainzServiceWithBaseURL(baseURL, userAgent string) *MusicBrainzService {
	return &MusicBrainzService{
		http: newProviderClient(
			types.ProviderMusicBrainz,
			nil,
			MusicBrainzRequestInterval,
			baseURL,
			userAgent,
		),
		log: logger.New("MusicBrainzService"),
	}
}

func musicBrainzUserAgent(cfg config.Config) string {
	version := cfg.GeneralVersion
	if version == "" {
		version = "dev"
	}
	return fmt.Sprintf("chartintel/%s ( %s )", version, cfg.MusicBrainzContact)
}

type mbRelation struct {
	Type       string `json:"type"`
	TargetType string `json:"target-type"`
	URL        *struct {
		Resource string `json:"resource"`
	} `json:"url,omitempty"`
	Label *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"label,omitempty"`
}

type mbArtist struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	SortName  string       `json:"sort-name"`
	Type      string       `json:"type"`
	Country   string       `json:"country"`
	Score     int          `json:"score"`
	Relations []mbRelation `json:"relations"`
}

type mbSearchResponse struct {
	Artists []mbArtist `json:"artists"`
}

// SearchArtists runs a fuzzy name search. Results come back in registry
// score order.
func (s *MusicBrainzService) SearchArtists(ctx context.Context, name string) ([]types.RegistryArtist, error) {
	if name == "" {
		return nil, nil
	}

	params := url.Values{
		"query": {fmt.Sprintf("artist:%q", name)},
		"limit": {strconv.Itoa(musicBrainzSearchLimit)},
		"fmt":   {"json"},
	}

	var resp mbSearchResponse
	found, err := s.http.getJSON(ctx, "/artist", params, &resp)
	if err != nil || !found {
		return nil, err
	}

	artists := make([]types.RegistryArtist, 0, len(resp.Artists))
	for _, item := range resp.Artists {
		artists = append(artists, mapMusicBrainzArtist(item))
	}
	return artists, nil
}

// GetArtist fetches one record with its URL and label relations.
func (s *MusicBrainzService) GetArtist(ctx context.Context, mbid string) (*types.RegistryArtist, error) {
	if mbid == "" {
		return nil, nil
	}

	params := url.Values{
		"inc": {"url-rels+label-rels"},
		"fmt": {"json"},
	}

	var resp mbArtist
	found, err := s.http.getJSON(ctx, "/artist/"+url.PathEscape(mbid), params, &resp)
	if err != nil || !found || resp.ID == "" {
		return nil, err
	}

	artist := mapMusicBrainzArtist(resp)
	return &artist, nil
}

func mapMusicBrainzArtist(item mbArtist) types.RegistryArtist {
	relations := make([]types.RegistryRelation, 0, len(item.Relations))
	for _, rel := range item.Relations {
		relation := types.RegistryRelation{Type: rel.Type, TargetType: rel.TargetType}
		if rel.URL != nil {
			relation.URL = rel.URL.Resource
		}
		if rel.Label != nil {
			relation.LabelName = rel.Label.Name
		}
		relations = append(relations, relation)
	}

	return types.RegistryArtist{
		ID:        item.ID,
		Name:      utils.CleanName(item.Name),
		SortName:  item.SortName,
		Type:      item.Type,
		Country:   item.Country,
		Score:     item.Score,
		Relations: relations,
	}
}
