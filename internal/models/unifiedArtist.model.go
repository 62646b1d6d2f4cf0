package models

import (
	"strings"
	"time"

	"chartintel/internal/types"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ArtistExternalIDs struct {
	SpotifyID      *string `gorm:"column:spotify_id;type:text;index"      json:"spotifyId,omitempty"`
	LastFMID       *string `gorm:"column:lastfm_id;type:text;index"       json:"lastfmId,omitempty"`
	ListenBrainzID *string `gorm:"column:listenbrainz_id;type:text;index" json:"listenbrainzId,omitempty"`
}

// UnifiedArtist is the provider-agnostic record for a performer. Metrics are
// written by the aggregators, IsIndependent by the classifier and the score
// fields by the scoring service.
type UnifiedArtist struct {
	BaseUUIDModel
	Name           string                                 `gorm:"type:text;not null;index:idx_unified_artists_name" json:"name"                validate:"required"`
	RegistryID     *string                                `gorm:"type:text;index"                                   json:"registryId,omitempty"`
	ExternalIDs    ArtistExternalIDs                      `gorm:"embedded;embeddedPrefix:external_"                 json:"externalIds"`
	Label          string                                 `gorm:"type:text"                                         json:"label,omitempty"`
	Genres         datatypes.JSONSlice[string]            `                                                         json:"genres"`
	Images         datatypes.JSONSlice[string]            `                                                         json:"images"`
	Metrics        datatypes.JSONType[ArtistMetrics]      `                                                         json:"metrics"`
	CompositeScore float64                                `gorm:"default:0;index"                                   json:"compositeScore"`
	MomentumScore  float64                                `gorm:"default:0;index"                                   json:"momentumScore"`
	ReachScore     float64                                `gorm:"default:0"                                         json:"reachScore"`
	ScoredAt       *time.Time                             `                                                         json:"scoredAt,omitempty"`
	IsIndependent  bool                                   `gorm:"default:true;index"                                json:"isIndependent"`
	ScoreHistory   datatypes.JSONSlice[ScoreHistoryEntry] `                                                         json:"scoreHistory"`
}

func NewUnifiedArtist(name string) *UnifiedArtist {
	return &UnifiedArtist{
		Name:          strings.TrimSpace(name),
		IsIndependent: true,
		Genres:        datatypes.JSONSlice[string]{},
		Images:        datatypes.JSONSlice[string]{},
		Metrics:       datatypes.NewJSONType(ArtistMetrics{}),
		ScoreHistory:  datatypes.JSONSlice[ScoreHistoryEntry]{},
	}
}

func (a *UnifiedArtist) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(a.Name) == "" {
		return gorm.ErrInvalidValue
	}
	return a.assignID()
}

func (a *UnifiedArtist) CurrentMetrics() ArtistMetrics {
	return a.Metrics.Data()
}

func (a *UnifiedArtist) SetMetrics(metrics ArtistMetrics) {
	a.Metrics = datatypes.NewJSONType(metrics)
}

// ExternalID returns the artist's identifier at the given provider. The
// registry identifier doubles as the listen-tracking key when no explicit
// one is stored.
func (a *UnifiedArtist) ExternalID(provider types.ProviderName) string {
	var id *string
	switch provider {
	case types.ProviderSpotify:
		id = a.ExternalIDs.SpotifyID
	case types.ProviderLastFM:
		id = a.ExternalIDs.LastFMID
	case types.ProviderListenBrainz:
		id = a.ExternalIDs.ListenBrainzID
		if id == nil {
			id = a.RegistryID
		}
	case types.ProviderMusicBrainz:
		id = a.RegistryID
	}

	if id == nil {
		return ""
	}
	return *id
}

// SetExternalID records an identifier without overwriting a known one.
// Returns true when the record changed.
func (a *UnifiedArtist) SetExternalID(provider types.ProviderName, id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || a.ExternalID(provider) == id {
		return false
	}

	var target **string
	switch provider {
	case types.ProviderSpotify:
		target = &a.ExternalIDs.SpotifyID
	case types.ProviderLastFM:
		target = &a.ExternalIDs.LastFMID
	case types.ProviderListenBrainz:
		target = &a.ExternalIDs.ListenBrainzID
	case types.ProviderMusicBrainz:
		target = &a.RegistryID
	default:
		return false
	}

	if *target != nil {
		return false
	}
	*target = &id
	return true
}

// RecordScores writes the derived scores and appends them to the rolling
// history.
func (a *UnifiedArtist) RecordScores(composite, momentum, reach float64, now time.Time) {
	a.CompositeScore = composite
	a.MomentumScore = momentum
	a.ReachScore = reach
	a.ScoredAt = &now
	a.ScoreHistory = AppendScoreHistory(a.ScoreHistory, ScoreHistoryEntry{
		Date:           now,
		CompositeScore: composite,
		MomentumScore:  momentum,
		ReachScore:     reach,
	}, now)
}
