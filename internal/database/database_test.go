package database

import (
	"context"
	"path/filepath"
	"testing"

	"eden_passes_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:/data/eden.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", SQLiteDSN("/data/eden.db"))
}

func TestOpenMemory(t *testing.T) {
	store, err := Open(context.Background(), config.StoreConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, store.Driver())
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mongo"})
	assert.Error(t, err)
}

func TestApplySchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "schema.db")}
	db, err := Connect(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, ApplySchema(ctx, db, cfg.Driver))
	require.NoError(t, ApplySchema(ctx, db, cfg.Driver))

	var tables int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('customers', 'passes')`).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 2, tables)

	var foreignKeys int
	require.NoError(t, db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)
}
