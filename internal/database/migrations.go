package database

import (
	"chartintel/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

var ModelsToMigrate = []any{
	&models.UnifiedArtist{},
	&models.UnifiedTrack{},
}

// MigrateModels runs GORM AutoMigrate for the entity store.
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	for _, model := range ModelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes adds the expression indexes GORM tags cannot describe. The
// unique name indexes back find-or-create under concurrent imports, so a
// failure to build them is returned; the rest only warn.
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	uniqueIndexes := []string{
		"DROP INDEX IF EXISTS idx_unified_artists_lower_name",
		"DROP INDEX IF EXISTS idx_unified_tracks_artist_lower_name",
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_unified_artists_lower_name ON unified_artists (LOWER(name))",
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_unified_tracks_artist_lower_name ON unified_tracks (artist_id, LOWER(name))",
	}

	for _, indexSQL := range uniqueIndexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			return log.Err("failed to create unique index", err, "sql", indexSQL)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_unified_artists_created_at ON unified_artists (created_at)",
	}

	// Trigram indexes need the pg_trgm extension from the file migrations.
	if db.SQL.Dialector.Name() == "postgres" {
		indexes = append(indexes,
			"CREATE INDEX IF NOT EXISTS idx_unified_artists_name_trgm ON unified_artists USING gin (LOWER(name) gin_trgm_ops)",
			"CREATE INDEX IF NOT EXISTS idx_unified_tracks_name_trgm ON unified_tracks USING gin (LOWER(name) gin_trgm_ops)",
		)
	}

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
