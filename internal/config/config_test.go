package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Auth.Enabled)
	assert.Empty(t, cfg.Events.Brokers)
}

func TestLoadFromDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STORE_DRIVER=SQLite\nSQLITE_PATH=/tmp/eden.db\nKAFKA_BROKERS=k1:9092,k2:9092\n"), 0o600))
	t.Setenv("PORT", "8080")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "30000")
	t.Cleanup(func() {
		os.Unsetenv("STORE_DRIVER")
		os.Unsetenv("SQLITE_PATH")
		os.Unsetenv("KAFKA_BROKERS")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/eden.db", cfg.Store.SQLitePath)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Brokers)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
}

func TestLoadMissingDotenvIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("AUTH_ENABLED", "true")
	_, err = Load("")
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s")
	_, err = Load("")
	assert.ErrorContains(t, err, "OPERATOR_PASSWORD_HASH")

	hash, err := bcrypt.GenerateFromPassword([]byte("desk-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	t.Setenv("OPERATOR_PASSWORD_HASH", string(hash))
	_, err = Load("")
	assert.NoError(t, err)
}

func TestValidateRejectsMalformedPasswordHash(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", "s")

	for name, value := range map[string]string{
		"plaintext": "desk-secret",
		"truncated": "$2a$10$abcdefghijklmnopqrstuv",
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv("OPERATOR_PASSWORD_HASH", value)
			_, err := Load("")
			assert.ErrorContains(t, err, "invalid OPERATOR_PASSWORD_HASH")
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := StoreConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.DSN())
}
