package models

import (
	"strings"
	"time"

	"chartintel/internal/types"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TrackExternalIDs struct {
	SpotifyID *string `gorm:"column:spotify_id;type:text;index" json:"spotifyId,omitempty"`
	LastFMID  *string `gorm:"column:lastfm_id;type:text;index"  json:"lastfmId,omitempty"`
}

// UnifiedTrack belongs to exactly one UnifiedArtist. ArtistID and ArtistName
// are create-only: ArtistName is a snapshot of the owner's name at creation.
type UnifiedTrack struct {
	BaseUUIDModel
	ArtistID       uuid.UUID                              `gorm:"type:uuid;not null;index;<-:create"                    json:"artistId"     validate:"required"`
	Name           string                                 `gorm:"type:text;not null;index:idx_unified_tracks_name"      json:"name"         validate:"required"`
	ArtistName     string                                 `gorm:"type:text;not null;index:idx_unified_tracks_artist_name;<-:create" json:"artistName"`
	ExternalIDs    TrackExternalIDs                       `gorm:"embedded;embeddedPrefix:external_"                     json:"externalIds"`
	Metrics        datatypes.JSONType[TrackMetrics]       `                                                             json:"metrics"`
	CompositeScore float64                                `gorm:"default:0;index"                                       json:"compositeScore"`
	MomentumScore  float64                                `gorm:"default:0;index"                                       json:"momentumScore"`
	ScoredAt       *time.Time                             `                                                             json:"scoredAt,omitempty"`
	ScoreHistory   datatypes.JSONSlice[ScoreHistoryEntry] `                                                             json:"scoreHistory"`
	Album          string                                 `gorm:"type:text"                                             json:"album,omitempty"`
	ReleaseDate    *time.Time                             `                                                             json:"releaseDate,omitempty"`
	Genres         datatypes.JSONSlice[string]            `                                                             json:"genres"`
	Images         datatypes.JSONSlice[string]            `                                                             json:"images"`
	DurationMs     int                                    `gorm:"type:int;default:0"                                    json:"durationMs"`

	Artist *UnifiedArtist `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
}

func NewUnifiedTrack(name string, artist *UnifiedArtist) *UnifiedTrack {
	return &UnifiedTrack{
		ArtistID:     artist.ID,
		Name:         strings.TrimSpace(name),
		ArtistName:   artist.Name,
		Metrics:      datatypes.NewJSONType(TrackMetrics{}),
		ScoreHistory: datatypes.JSONSlice[ScoreHistoryEntry]{},
		Genres:       datatypes.JSONSlice[string]{},
		Images:       datatypes.JSONSlice[string]{},
	}
}

func (t *UnifiedTrack) BeforeCreate(tx *gorm.DB) error {
	if t.ArtistID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if strings.TrimSpace(t.Name) == "" {
		return gorm.ErrInvalidValue
	}
	return t.assignID()
}

func (t *UnifiedTrack) CurrentMetrics() TrackMetrics {
	return t.Metrics.Data()
}

func (t *UnifiedTrack) SetMetrics(metrics TrackMetrics) {
	t.Metrics = datatypes.NewJSONType(metrics)
}

func (t *UnifiedTrack) ExternalID(provider types.ProviderName) string {
	var id *string
	switch provider {
	case types.ProviderSpotify:
		id = t.ExternalIDs.SpotifyID
	case types.ProviderLastFM:
		id = t.ExternalIDs.LastFMID
	}

	if id == nil {
		return ""
	}
	return *id
}

func (t *UnifiedTrack) SetExternalID(provider types.ProviderName, id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}

	var target **string
	switch provider {
	case types.ProviderSpotify:
		target = &t.ExternalIDs.SpotifyID
	case types.ProviderLastFM:
		target = &t.ExternalIDs.LastFMID
	default:
		return false
	}

	if *target != nil {
		return false
	}
	*target = &id
	return true
}

func (t *UnifiedTrack) RecordScores(composite, momentum float64, now time.Time) {
	t.CompositeScore = composite
	t.MomentumScore = momentum
	t.ScoredAt = &now
	t.ScoreHistory = AppendScoreHistory(t.ScoreHistory, ScoreHistoryEntry{
		Date:           now,
		CompositeScore: composite,
		MomentumScore:  momentum,
	}, now)
}
