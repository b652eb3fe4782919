package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"eden_passes_backend/pkg/utils"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Store drivers understood by StoreConfig.Driver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	RateLimit RateLimitConfig
	Events    EventsConfig
	Auth      AuthConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
	Version            string
	ShutdownTimeout    time.Duration
	SeedDemoData       bool
}

// StoreConfig selects and configures the persistence backend
type StoreConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// RateLimitConfig holds request rate limiting configuration.
// An empty RedisURL selects the in-process limiter.
type RateLimitConfig struct {
	Window   time.Duration
	Max      int
	RedisURL string
}

// EventsConfig holds Kafka publishing configuration.
// No brokers means events are only logged.
type EventsConfig struct {
	Brokers []string
	Topic   string
}

// AuthConfig holds operator authentication configuration
type AuthConfig struct {
	Enabled              bool
	JWTSecret            string
	TokenTTL             time.Duration
	OperatorUsername     string
	OperatorPasswordHash string
}

// LogConfig holds zerolog settings
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables. Values from a .env
// file, when present, are applied first without overriding the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               utils.Getenv("PORT", "3001"),
			CORSAllowedOrigins: utils.GetenvList("CORS_ALLOWED_ORIGINS", utils.GetenvList("CORS_ORIGIN", []string{"*"})),
			Version:            utils.Getenv("SERVICE_VERSION", "unknown"),
			ShutdownTimeout:    utils.GetenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			SeedDemoData:       utils.GetenvBool("SEED_DEMO_DATA", false),
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(utils.Getenv("STORE_DRIVER", DriverMemory)),
			Host:       utils.Getenv("DB_HOST", "localhost"),
			Port:       utils.Getenv("DB_PORT", "5432"),
			User:       utils.Getenv("DB_USER", "eden"),
			Password:   utils.Getenv("DB_PASSWORD", "eden"),
			DBName:     utils.Getenv("DB_NAME", "edenpasses"),
			SSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
			SQLitePath: utils.Getenv("SQLITE_PATH", "edenpasses.db"),
		},
		RateLimit: RateLimitConfig{
			Window:   utils.GetenvDuration("RATE_LIMIT_WINDOW", time.Duration(utils.GetenvInt("RATE_LIMIT_WINDOW_MS", 60000))*time.Millisecond),
			Max:      utils.GetenvInt("RATE_LIMIT_MAX", 100),
			RedisURL: utils.Getenv("REDIS_URL", ""),
		},
		Events: EventsConfig{
			Brokers: utils.GetenvList("KAFKA_BROKERS", nil),
			Topic:   utils.Getenv("KAFKA_TOPIC", "edenpasses.events"),
		},
		Auth: AuthConfig{
			Enabled:              utils.GetenvBool("AUTH_ENABLED", false),
			JWTSecret:            utils.Getenv("JWT_SECRET", ""),
			TokenTTL:             utils.GetenvDuration("JWT_TTL", 12*time.Hour),
			OperatorUsername:     utils.Getenv("OPERATOR_USERNAME", "frontdesk"),
			OperatorPasswordHash: utils.Getenv("OPERATOR_PASSWORD_HASH", ""),
		},
		Log: LogConfig{
			Level:  utils.Getenv("LOG_LEVEL", "info"),
			Format: utils.Getenv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations that cannot work at runtime.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: want memory, sqlite or postgres", c.Store.Driver)
	}
	if c.RateLimit.Max < 0 {
		return fmt.Errorf("invalid RATE_LIMIT_MAX %d", c.RateLimit.Max)
	}
	if c.Auth.Enabled {
		if c.Auth.JWTSecret == "" {
			return errors.New("AUTH_ENABLED requires JWT_SECRET")
		}
		if c.Auth.OperatorPasswordHash == "" {
			return errors.New("AUTH_ENABLED requires OPERATOR_PASSWORD_HASH")
		}
		if _, err := bcrypt.Cost([]byte(c.Auth.OperatorPasswordHash)); err != nil {
			return fmt.Errorf("invalid OPERATOR_PASSWORD_HASH, generate one with `passes hash-password`: %w", err)
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (s *StoreConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		s.Host, s.Port, s.User, s.Password, s.DBName, s.SSLMode)
}
