package types

import (
	"context"
	"fmt"
)

type ProviderName string

const (
	ProviderSpotify      ProviderName = "spotify"
	ProviderLastFM       ProviderName = "lastfm"
	ProviderMusicBrainz  ProviderName = "musicbrainz"
	ProviderListenBrainz ProviderName = "listenbrainz"
)

// TimeWindow selects the aggregation period for providers that chart over
// a range.
type TimeWindow string

const (
	WindowWeek    TimeWindow = "week"
	WindowMonth   TimeWindow = "month"
	WindowYear    TimeWindow = "year"
	WindowAllTime TimeWindow = "all_time"
)

// Capability interfaces. A client implements only what its provider
// supports; not-found is reported as a nil result with a nil error.

type ArtistSearcher[T any] interface {
	SearchArtists(ctx context.Context, name string) ([]T, error)
}

type ArtistGetter[T any] interface {
	GetArtist(ctx context.Context, id string) (*T, error)
}

type TopArtistLister[T any] interface {
	GetTopArtists(ctx context.Context, limit int, window TimeWindow) ([]T, error)
}

// StreamingArtist is the streaming catalog's view of an artist.
type StreamingArtist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Followers  int64    `json:"followers"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres,omitempty"`
	Images     []string `json:"images,omitempty"`
}

type StreamingTrack struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	ArtistNames          []string `json:"artistNames"`
	Popularity           int      `json:"popularity"`
	Album                string   `json:"album,omitempty"`
	ReleaseDate          string   `json:"releaseDate,omitempty"`
	ReleaseDatePrecision string   `json:"releaseDatePrecision,omitempty"`
	DurationMs           int      `json:"durationMs"`
	Images               []string `json:"images,omitempty"`
}

// ScrobbleArtist is the scrobbling service's view of an artist, either from
// a chart entry or a full info lookup.
type ScrobbleArtist struct {
	Name      string   `json:"name"`
	MBID      string   `json:"mbid,omitempty"`
	URL       string   `json:"url,omitempty"`
	Listeners int64    `json:"listeners"`
	Playcount int64    `json:"playcount"`
	Tags      []string `json:"tags,omitempty"`
}

type ScrobbleTrack struct {
	Name       string `json:"name"`
	ArtistName string `json:"artistName"`
	MBID       string `json:"mbid,omitempty"`
	URL        string `json:"url,omitempty"`
	Listeners  int64  `json:"listeners"`
	Playcount  int64  `json:"playcount"`
	DurationMs int    `json:"durationMs"`
}

// RegistryArtist is a metadata-registry record. Relations carry the
// cross-references used to bridge identifiers to the other providers.
type RegistryArtist struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	SortName  string             `json:"sortName,omitempty"`
	Type      string             `json:"type,omitempty"`
	Country   string             `json:"country,omitempty"`
	Score     int                `json:"score"`
	Relations []RegistryRelation `json:"relations,omitempty"`
}

type RegistryRelation struct {
	Type       string `json:"type"`
	TargetType string `json:"targetType"`
	URL        string `json:"url,omitempty"`
	LabelName  string `json:"labelName,omitempty"`
}

type ListenArtist struct {
	MBID          string `json:"mbid"`
	Name          string `json:"name"`
	ListenCount   int64  `json:"listenCount"`
	ListenerCount int64  `json:"listenerCount"`
}

// ProviderError is a transport or authentication failure. Callers treat it
// as "no data this cycle".
type ProviderError struct {
	Provider   ProviderName
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: HTTP %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
