package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"asterbot/internal/config"
	"asterbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(config.DatabaseConfig{Path: ":memory:"}, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// withClock фиксирует время, которое база пишет в created_at/last_active.
func withClock(db *DB, now time.Time) {
	db.now = func() time.Time { return now }
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(config.DatabaseConfig{Path: dbPath, MaxOpenConns: 4}, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, 4, db.Stats().MaxOpenConnections)
}

func TestNewDB_MemoryUsesSingleConnection(t *testing.T) {
	db := setupTestDB(t)
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestNewDB_SeedsPrizes(t *testing.T) {
	db := setupTestDB(t)

	prizes, err := db.ListPrizes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPrizes, prizes)
}

func TestNewDB_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	logger := zerolog.Nop()

	db, err := NewDB(config.DatabaseConfig{Path: dbPath}, &logger)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(config.DatabaseConfig{Path: dbPath}, &logger)
	require.NoError(t, err)
	defer db.Close()

	prizes, err := db.ListPrizes(context.Background())
	require.NoError(t, err)
	assert.Len(t, prizes, len(models.DefaultPrizes))
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.PingContext(context.Background()))
}
