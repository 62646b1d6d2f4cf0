// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"chartintel/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite store with the production
// expression indexes. A single connection keeps every query on the same
// in-memory database.
func NewTestDB(t *testing.T) database.DB {
	t.Helper()

	sqlDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	raw, err := sqlDB.DB()
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = raw.Close() })

	db := database.NewWithSQL(sqlDB)
	require.NoError(t, db.MigrateModels())
	require.NoError(t, db.CreateIndexes())

	return db
}
