// Package dbtest opens throwaway in-memory databases for package tests.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskchat/internal/dbmysql"
)

// New returns a migrated SQLite database private to the calling test.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to ":memory:" is its own database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, dbmysql.AutoMigrate(db))
	t.Cleanup(func() { sqlDB.Close() })

	return db
}
