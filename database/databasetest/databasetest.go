// Package databasetest opens throwaway SQLite databases for tests.
package databasetest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/models"
)

// Open returns a migrated database backed by a file in t.TempDir().
func Open(t testing.TB) database.Database {
	t.Helper()

	db, err := database.Open(database.Options{
		Type:     database.TypeSQLite,
		DSN:      database.SQLiteDSN(filepath.Join(t.TempDir(), "test.db")),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	d := database.New(db)
	t.Cleanup(func() { d.Close() })
	return d
}
