package repositories

import (
	"context"
	"errors"
	"strings"

	contextutil "chartintel/internal/context"
	"chartintel/internal/database"
	. "chartintel/internal/models"
	"chartintel/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	trackMetricsColumns = []string{
		"external_spotify_id",
		"external_lastfm_id",
		"metrics",
		"album",
		"release_date",
		"genres",
		"images",
		"duration_ms",
		"updated_at",
	}
	trackScoreColumns = []string{
		"composite_score",
		"momentum_score",
		"scored_at",
		"score_history",
		"updated_at",
	}
)

type UnifiedTrackRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*UnifiedTrack, error)
	FindByNameForArtist(ctx context.Context, name string, artistID uuid.UUID) (*UnifiedTrack, error)
	FindByExternalID(ctx context.Context, provider types.ProviderName, id string) (*UnifiedTrack, error)
	FindOrCreate(ctx context.Context, name string, artist *UnifiedArtist) (*UnifiedTrack, bool, error)
	ListAll(ctx context.Context) ([]*UnifiedTrack, error)
	ListByArtist(ctx context.Context, artistID uuid.UUID) ([]*UnifiedTrack, error)
	TopByComposite(ctx context.Context, limit int) ([]*UnifiedTrack, error)
	TopByMomentum(ctx context.Context, limit int) ([]*UnifiedTrack, error)
	Search(ctx context.Context, query string, limit int) ([]*UnifiedTrack, error)
	SaveMetrics(ctx context.Context, track *UnifiedTrack) error
	SaveScores(ctx context.Context, track *UnifiedTrack) error
}

type unifiedTrackRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUnifiedTrackRepository(db database.DB) UnifiedTrackRepository {
	return &unifiedTrackRepository{
		db:  db,
		log: logger.New("unifiedTrackRepository"),
	}
}

func (r *unifiedTrackRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *unifiedTrackRepository) first(query *gorm.DB) (*UnifiedTrack, error) {
	var track UnifiedTrack
	if err := query.First(&track).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &track, nil
}

func (r *unifiedTrackRepository) GetByID(ctx context.Context, id uuid.UUID) (*UnifiedTrack, error) {
	log := r.log.Function("GetByID")

	track, err := r.first(r.getDB(ctx).Where("id = ?", id))
	if err != nil {
		return nil, log.Err("failed to get track by ID", err, "id", id)
	}
	return track, nil
}

// FindByNameForArtist matches the title case-insensitively within one
// artist's catalog.
func (r *unifiedTrackRepository) FindByNameForArtist(
	ctx context.Context,
	name string,
	artistID uuid.UUID,
) (*UnifiedTrack, error) {
	log := r.log.Function("FindByNameForArtist")

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	track, err := r.first(
		r.getDB(ctx).
			Where("artist_id = ? AND LOWER(name) = LOWER(?)", artistID, name).
			Order("created_at ASC"),
	)
	if err != nil {
		return nil, log.Err("failed to find track", err, "name", name, "artistID", artistID)
	}
	return track, nil
}

func (r *unifiedTrackRepository) FindByExternalID(
	ctx context.Context,
	provider types.ProviderName,
	id string,
) (*UnifiedTrack, error) {
	log := r.log.Function("FindByExternalID")

	var column string
	switch provider {
	case types.ProviderSpotify:
		column = "external_spotify_id"
	case types.ProviderLastFM:
		column = "external_lastfm_id"
	default:
		return nil, nil
	}

	if id == "" {
		return nil, nil
	}

	track, err := r.first(r.getDB(ctx).Where(column+" = ?", id))
	if err != nil {
		return nil, log.Err("failed to find track by external ID", err, "provider", provider, "id", id)
	}
	return track, nil
}

// FindOrCreate returns the artist's track with this title or creates it.
// The artist name is copied onto a new track and never re-synced. Like the
// artist lookup, a lost insert race resolves to the winning row.
func (r *unifiedTrackRepository) FindOrCreate(
	ctx context.Context,
	name string,
	artist *UnifiedArtist,
) (*UnifiedTrack, bool, error) {
	log := r.log.Function("FindOrCreate")

	name = strings.TrimSpace(name)
	if name == "" || artist == nil || artist.ID == uuid.Nil {
		return nil, false, log.ErrMsg("track name and persisted artist are required")
	}

	db := r.getDB(ctx)
	byName := func() (*UnifiedTrack, error) {
		return r.first(
			db.Where("artist_id = ? AND LOWER(name) = LOWER(?)", artist.ID, name).
				Order("created_at ASC"),
		)
	}

	existing, err := byName()
	if err != nil {
		return nil, false, log.Err("failed to find track", err, "name", name, "artistID", artist.ID)
	}
	if existing != nil {
		return existing, false, nil
	}

	track := NewUnifiedTrack(name, artist)
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(track)
	if result.Error != nil {
		return nil, false, log.Err("failed to create track", result.Error, "name", name, "artistID", artist.ID)
	}
	if result.RowsAffected == 1 {
		return track, true, nil
	}

	existing, err = byName()
	if err != nil {
		return nil, false, log.Err("failed to reload track after conflict", err, "name", name)
	}
	if existing == nil {
		return nil, false, log.Error("track insert conflicted but no row found", "name", name, "artistID", artist.ID)
	}

	return existing, false, nil
}

func (r *unifiedTrackRepository) ListAll(ctx context.Context) ([]*UnifiedTrack, error) {
	log := r.log.Function("ListAll")

	var tracks []*UnifiedTrack
	if err := r.getDB(ctx).Order("created_at ASC, id ASC").Find(&tracks).Error; err != nil {
		return nil, log.Err("failed to list tracks", err)
	}
	return tracks, nil
}

func (r *unifiedTrackRepository) ListByArtist(ctx context.Context, artistID uuid.UUID) ([]*UnifiedTrack, error) {
	log := r.log.Function("ListByArtist")

	var tracks []*UnifiedTrack
	err := r.getDB(ctx).
		Where("artist_id = ?", artistID).
		Order("created_at ASC, id ASC").
		Find(&tracks).Error
	if err != nil {
		return nil, log.Err("failed to list tracks for artist", err, "artistID", artistID)
	}
	return tracks, nil
}

func (r *unifiedTrackRepository) TopByComposite(ctx context.Context, limit int) ([]*UnifiedTrack, error) {
	return r.top(ctx, "composite_score", limit)
}

func (r *unifiedTrackRepository) TopByMomentum(ctx context.Context, limit int) ([]*UnifiedTrack, error) {
	return r.top(ctx, "momentum_score", limit)
}

func (r *unifiedTrackRepository) top(ctx context.Context, column string, limit int) ([]*UnifiedTrack, error) {
	log := r.log.Function("top")

	var tracks []*UnifiedTrack
	err := r.getDB(ctx).
		Order(column + " DESC").
		Order("name ASC").
		Limit(limit).
		Find(&tracks).Error
	if err != nil {
		return nil, log.Err("failed to list top tracks", err, "column", column, "limit", limit)
	}
	return tracks, nil
}

// Search matches the title or the stored artist name.
func (r *unifiedTrackRepository) Search(ctx context.Context, query string, limit int) ([]*UnifiedTrack, error) {
	log := r.log.Function("Search")

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []*UnifiedTrack{}, nil
	}

	pattern := "%" + query + "%"
	var tracks []*UnifiedTrack
	err := r.getDB(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(artist_name) LIKE ?", pattern, pattern).
		Order("composite_score DESC").
		Order("name ASC").
		Limit(limit).
		Find(&tracks).Error
	if err != nil {
		return nil, log.Err("failed to search tracks", err, "query", query)
	}
	return tracks, nil
}

func (r *unifiedTrackRepository) SaveMetrics(ctx context.Context, track *UnifiedTrack) error {
	log := r.log.Function("SaveMetrics")

	if err := r.getDB(ctx).Model(track).Select(trackMetricsColumns).Updates(track).Error; err != nil {
		return log.Err("failed to save track metrics", err, "trackID", track.ID)
	}
	return nil
}

func (r *unifiedTrackRepository) SaveScores(ctx context.Context, track *UnifiedTrack) error {
	log := r.log.Function("SaveScores")

	if err := r.getDB(ctx).Model(track).Select(trackScoreColumns).Updates(track).Error; err != nil {
		return log.Err("failed to save track scores", err, "trackID", track.ID)
	}
	return nil
}
