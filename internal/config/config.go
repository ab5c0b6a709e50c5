package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	DBMaxConns        int
	JWTSecret         string
	JWTAccessTokenTTL time.Duration

	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int

	RedisURL string
	CacheTTL time.Duration

	NATSURL           string
	NATSSubjectPrefix string

	OTelEnabled bool

	ListMaxLimit  int
	ExportMaxRows int
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	var err error
	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	if cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", 10); err != nil {
		return nil, err
	}

	// JWT secret is required for validating tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	if cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFile = getEnv("LOG_FILE", "")
	if cfg.LogMaxSizeMB, err = getEnvAsInt("LOG_MAX_SIZE_MB", 100); err != nil {
		return nil, err
	}
	if cfg.LogMaxBackups, err = getEnvAsInt("LOG_MAX_BACKUPS", 5); err != nil {
		return nil, err
	}

	// List cache (disabled when REDIS_URL is empty)
	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}

	// Change events (noop publisher when NATS_URL is empty)
	cfg.NATSURL = getEnv("NATS_URL", "")
	cfg.NATSSubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", "lbs")

	if cfg.OTelEnabled, err = getEnvAsBool("OTEL_ENABLED", false); err != nil {
		return nil, err
	}

	if cfg.ListMaxLimit, err = getEnvAsInt("LIST_MAX_LIMIT", 500); err != nil {
		return nil, err
	}
	if cfg.ListMaxLimit < 1 {
		return nil, fmt.Errorf("LIST_MAX_LIMIT must be positive, got %d", cfg.ListMaxLimit)
	}
	if cfg.ExportMaxRows, err = getEnvAsInt("EXPORT_MAX_ROWS", 10000); err != nil {
		return nil, err
	}
	if cfg.ExportMaxRows < 1 {
		return nil, fmt.Errorf("EXPORT_MAX_ROWS must be positive, got %d", cfg.ExportMaxRows)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid bool: %w", key, valStr, err)
	}

	return val, nil
}
