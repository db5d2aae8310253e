package testutil

import (
	"path/filepath"
	"testing"

	"example.com/outcry/config"
	"example.com/outcry/internal/database"

	"github.com/stretchr/testify/require"
)

// NewDB opens a migrated and seeded SQLite database in a temp directory
func NewDB(t *testing.T) database.DB {
	t.Helper()

	db, err := database.Connect(config.DatabaseConfig{
		Driver:   "sqlite",
		Path:     filepath.Join(t.TempDir(), "outcry_test.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedLookups(db))
	return db
}
