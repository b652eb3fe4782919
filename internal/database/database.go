package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"eden_passes_backend/internal/config"
	"eden_passes_backend/internal/repositories"
	"eden_passes_backend/pkg/utils"

	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Open returns the store selected by cfg.Driver, with its schema applied.
func Open(ctx context.Context, cfg config.StoreConfig) (repositories.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		utils.LogInfo("Using in-memory store")
		return repositories.NewMemoryStore(), nil
	case config.DriverSQLite, config.DriverPostgres:
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := ApplySchema(ctx, db, cfg.Driver); err != nil {
		db.Close()
		return nil, err
	}

	if cfg.Driver == config.DriverSQLite {
		return repositories.NewSQLiteStore(db), nil
	}
	return repositories.NewPostgresStore(db), nil
}

// Connect opens and pings the SQL connection pool for cfg.
func Connect(ctx context.Context, cfg config.StoreConfig) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = sql.Open("postgres", cfg.DSN())
		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(time.Hour)
		}
	case config.DriverSQLite:
		db, err = sql.Open("sqlite", SQLiteDSN(cfg.SQLitePath))
		if err == nil {
			// One writer at a time; SQLite serializes writes anyway.
			db.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("driver %q has no SQL connection", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("error opening %s database: %w", cfg.Driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to %s database: %w", cfg.Driver, err)
	}

	utils.LogInfo("Successfully connected to the database", map[string]interface{}{"driver": cfg.Driver})
	return db, nil
}

// SQLiteDSN enables foreign keys and a busy timeout on every connection.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// ApplySchema executes the embedded schema script for the driver.
// The scripts are idempotent.
func ApplySchema(ctx context.Context, db *sql.DB, driver string) error {
	content, err := schemaFS.ReadFile("schema/" + driver + ".sql")
	if err != nil {
		return fmt.Errorf("could not read schema for %s: %w", driver, err)
	}

	if _, err := db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	utils.LogInfo("Database schema applied successfully", map[string]interface{}{"driver": driver})
	return nil
}
