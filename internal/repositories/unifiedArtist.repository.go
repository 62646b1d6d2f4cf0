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

// Columns each writer owns. Writers never touch each other's columns, so
// concurrent jobs settle on last-write-wins per column group.
var (
	artistMetricsColumns = []string{
		"registry_id",
		"external_spotify_id",
		"external_lastfm_id",
		"external_listenbrainz_id",
		"label",
		"genres",
		"images",
		"metrics",
		"updated_at",
	}
	artistIndependenceColumns = []string{"is_independent", "updated_at"}
	artistScoreColumns        = []string{
		"composite_score",
		"momentum_score",
		"reach_score",
		"scored_at",
		"score_history",
		"updated_at",
	}
)

type UnifiedArtistRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*UnifiedArtist, error)
	FindByName(ctx context.Context, name string) (*UnifiedArtist, error)
	FindByExternalID(ctx context.Context, provider types.ProviderName, id string) (*UnifiedArtist, error)
	FindByRegistryID(ctx context.Context, registryID string) (*UnifiedArtist, error)
	FindOrCreateByName(ctx context.Context, name string) (*UnifiedArtist, bool, error)
	ListAll(ctx context.Context) ([]*UnifiedArtist, error)
	TopByComposite(ctx context.Context, limit int) ([]*UnifiedArtist, error)
	TopByMomentum(ctx context.Context, limit int) ([]*UnifiedArtist, error)
	Search(ctx context.Context, query string, limit int) ([]*UnifiedArtist, error)
	SaveMetrics(ctx context.Context, artist *UnifiedArtist) error
	SaveIndependence(ctx context.Context, artist *UnifiedArtist) error
	SaveScores(ctx context.Context, artist *UnifiedArtist) error
}

type unifiedArtistRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUnifiedArtistRepository(db database.DB) UnifiedArtistRepository {
	return &unifiedArtistRepository{
		db:  db,
		log: logger.New("unifiedArtistRepository"),
	}
}

func (r *unifiedArtistRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

// first runs a single-row query; a missing row is (nil, nil).
func (r *unifiedArtistRepository) first(query *gorm.DB) (*UnifiedArtist, error) {
	var artist UnifiedArtist
	if err := query.First(&artist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &artist, nil
}

func (r *unifiedArtistRepository) GetByID(ctx context.Context, id uuid.UUID) (*UnifiedArtist, error) {
	log := r.log.Function("GetByID")

	artist, err := r.first(r.getDB(ctx).Where("id = ?", id))
	if err != nil {
		return nil, log.Err("failed to get artist by ID", err, "id", id)
	}
	return artist, nil
}

// FindByName matches case-insensitively on the exact name.
func (r *unifiedArtistRepository) FindByName(ctx context.Context, name string) (*UnifiedArtist, error) {
	log := r.log.Function("FindByName")

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	artist, err := r.first(
		r.getDB(ctx).Where("LOWER(name) = LOWER(?)", name).Order("created_at ASC"),
	)
	if err != nil {
		return nil, log.Err("failed to find artist by name", err, "name", name)
	}
	return artist, nil
}

func (r *unifiedArtistRepository) FindByExternalID(
	ctx context.Context,
	provider types.ProviderName,
	id string,
) (*UnifiedArtist, error) {
	log := r.log.Function("FindByExternalID")

	column, ok := artistExternalIDColumn(provider)
	if !ok || id == "" {
		return nil, nil
	}

	artist, err := r.first(r.getDB(ctx).Where(column+" = ?", id))
	if err != nil {
		return nil, log.Err("failed to find artist by external ID", err, "provider", provider, "id", id)
	}
	return artist, nil
}

func (r *unifiedArtistRepository) FindByRegistryID(
	ctx context.Context,
	registryID string,
) (*UnifiedArtist, error) {
	return r.FindByExternalID(ctx, types.ProviderMusicBrainz, registryID)
}

// FindOrCreateByName returns the existing artist for name or creates one.
// The boolean reports whether a record was created. A concurrent writer that
// inserts the same name first wins, and its row is returned.
func (r *unifiedArtistRepository) FindOrCreateByName(
	ctx context.Context,
	name string,
) (*UnifiedArtist, bool, error) {
	log := r.log.Function("FindOrCreateByName")

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, log.ErrMsg("artist name is required")
	}

	db := r.getDB(ctx)
	byName := func() (*UnifiedArtist, error) {
		return r.first(db.Where("LOWER(name) = LOWER(?)", name).Order("created_at ASC"))
	}

	existing, err := byName()
	if err != nil {
		return nil, false, log.Err("failed to find artist", err, "name", name)
	}
	if existing != nil {
		return existing, false, nil
	}

	artist := NewUnifiedArtist(name)
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(artist)
	if result.Error != nil {
		return nil, false, log.Err("failed to create artist", result.Error, "name", name)
	}
	if result.RowsAffected == 1 {
		return artist, true, nil
	}

	existing, err = byName()
	if err != nil {
		return nil, false, log.Err("failed to reload artist after conflict", err, "name", name)
	}
	if existing == nil {
		return nil, false, log.Error("artist insert conflicted but no row found", "name", name)
	}

	log.Debug("Artist created concurrently, using existing row", "name", name, "id", existing.ID)
	return existing, false, nil
}

// ListAll returns every artist in creation order.
func (r *unifiedArtistRepository) ListAll(ctx context.Context) ([]*UnifiedArtist, error) {
	log := r.log.Function("ListAll")

	var artists []*UnifiedArtist
	if err := r.getDB(ctx).Order("created_at ASC, id ASC").Find(&artists).Error; err != nil {
		return nil, log.Err("failed to list artists", err)
	}
	return artists, nil
}

func (r *unifiedArtistRepository) TopByComposite(ctx context.Context, limit int) ([]*UnifiedArtist, error) {
	return r.top(ctx, "composite_score", limit)
}

func (r *unifiedArtistRepository) TopByMomentum(ctx context.Context, limit int) ([]*UnifiedArtist, error) {
	return r.top(ctx, "momentum_score", limit)
}

func (r *unifiedArtistRepository) top(ctx context.Context, column string, limit int) ([]*UnifiedArtist, error) {
	log := r.log.Function("top")

	var artists []*UnifiedArtist
	err := r.getDB(ctx).
		Order(column + " DESC").
		Order("name ASC").
		Limit(limit).
		Find(&artists).Error
	if err != nil {
		return nil, log.Err("failed to list top artists", err, "column", column, "limit", limit)
	}
	return artists, nil
}

func (r *unifiedArtistRepository) Search(
	ctx context.Context,
	query string,
	limit int,
) ([]*UnifiedArtist, error) {
	log := r.log.Function("Search")

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []*UnifiedArtist{}, nil
	}

	var artists []*UnifiedArtist
	err := r.getDB(ctx).
		Where("LOWER(name) LIKE ?", "%"+query+"%").
		Order("composite_score DESC").
		Order("name ASC").
		Limit(limit).
		Find(&artists).Error
	if err != nil {
		return nil, log.Err("failed to search artists", err, "query", query)
	}
	return artists, nil
}

func (r *unifiedArtistRepository) SaveMetrics(ctx context.Context, artist *UnifiedArtist) error {
	log := r.log.Function("SaveMetrics")

	if err := r.save(ctx, artist, artistMetricsColumns); err != nil {
		return log.Err("failed to save artist metrics", err, "artistID", artist.ID)
	}
	return nil
}

func (r *unifiedArtistRepository) SaveIndependence(ctx context.Context, artist *UnifiedArtist) error {
	log := r.log.Function("SaveIndependence")

	if err := r.save(ctx, artist, artistIndependenceColumns); err != nil {
		return log.Err("failed to save artist independence", err, "artistID", artist.ID)
	}
	return nil
}

func (r *unifiedArtistRepository) SaveScores(ctx context.Context, artist *UnifiedArtist) error {
	log := r.log.Function("SaveScores")

	if err := r.save(ctx, artist, artistScoreColumns); err != nil {
		return log.Err("failed to save artist scores", err, "artistID", artist.ID)
	}
	return nil
}

func (r *unifiedArtistRepository) save(ctx context.Context, artist *UnifiedArtist, columns []string) error {
	return r.getDB(ctx).Model(artist).Select(columns).Updates(artist).Error
}

func artistExternalIDColumn(provider types.ProviderName) (string, bool) {
	switch provider {
	case types.ProviderSpotify:
		return "external_spotify_id", true
	case types.ProviderLastFM:
		return "external_lastfm_id", true
	case types.ProviderListenBrainz:
		return "external_listenbrainz_id", true
	case types.ProviderMusicBrainz:
		return "registry_id", true
	default:
		return "", false
	}
}
