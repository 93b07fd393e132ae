// Package repotest opens throwaway SQLite backed repositories for tests.
package repotest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mbeoliero/coursehub/internal/repository"
)

// OpenDB opens a migrated SQLite database in a temp dir owned by t
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "coursehub.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), repository.GormConfig(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewRepositories returns repositories over a fresh SQLite database without Redis
func NewRepositories(t testing.TB) *repository.Repositories {
	t.Helper()
	return repository.NewRepositoriesWithDB(OpenDB(t), nil)
}
