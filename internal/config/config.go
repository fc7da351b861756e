package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	PostgreSQL  PostgreSQLConfig
	Server      ServerConfig
	Store       StoreConfig
	Search      SearchConfig
	Retry       RetryConfig
	Cache       CacheConfig
	Performance PerformanceConfig
	Logging     LoggingConfig

	// Warnings lists variables that failed to parse and fell back to defaults
	Warnings []string
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, preferred when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// StoreConfig selects the data store backing the directory
type StoreConfig struct {
	Driver   string // "postgres" or "memory"
	SeedFile string // JSON fixture for the memory driver
}

// SearchConfig holds query bounds for the listing endpoint
type SearchConfig struct {
	DefaultLimit    int
	MaxLimit        int
	MaxFilterValues int
	MaxSearchLength int
}

// RetryConfig holds the backoff policy for store queries
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
}

// CacheConfig holds HTTP cache directives
type CacheConfig struct {
	MaxAgeSeconds int
}

// PerformanceConfig holds the latency budget
type PerformanceConfig struct {
	Target    time.Duration
	WarnRatio float64
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	env := &envReader{}
	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               env.getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "agency_directory"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     env.getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: env.getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           env.getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: parseCommaSeparated(getEnv("CORS_ALLOWED_ORIGINS", "*")),
			AllowedMethods: parseCommaSeparated(getEnv("CORS_ALLOWED_METHODS", "GET,OPTIONS")),
			AllowedHeaders: parseCommaSeparated(getEnv("CORS_ALLOWED_HEADERS", "Content-Type,If-None-Match,X-Request-ID")),
		},
		Store: StoreConfig{
			Driver:   getEnv("STORE_DRIVER", "postgres"),
			SeedFile: getEnv("STORE_SEED_FILE", ""),
		},
		Search: SearchConfig{
			DefaultLimit:    env.getEnvAsInt("SEARCH_DEFAULT_LIMIT", 20),
			MaxLimit:        env.getEnvAsInt("SEARCH_MAX_LIMIT", 100),
			MaxFilterValues: env.getEnvAsInt("SEARCH_MAX_FILTER_VALUES", 10),
			MaxSearchLength: env.getEnvAsInt("SEARCH_MAX_LENGTH", 200),
		},
		Retry: RetryConfig{
			MaxAttempts:  env.getEnvAsInt("DB_RETRY_MAX_ATTEMPTS", 3),
			InitialDelay: env.getEnvAsDuration("DB_RETRY_INITIAL_DELAY", time.Second),
			Multiplier:   env.getEnvAsFloat("DB_RETRY_MULTIPLIER", 1.5),
		},
		Cache: CacheConfig{
			MaxAgeSeconds: env.getEnvAsInt("CACHE_MAX_AGE_SECONDS", 300),
		},
		Performance: PerformanceConfig{
			Target:    env.getEnvAsDuration("PERF_TARGET", 100*time.Millisecond),
			WarnRatio: env.getEnvAsFloat("PERF_WARN_RATIO", 0.8),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	cfg.Warnings = env.warnings

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", c.Store.Driver)
	}
	if c.Search.DefaultLimit < 1 || c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("SEARCH_DEFAULT_LIMIT must be between 1 and SEARCH_MAX_LIMIT (%d)", c.Search.MaxLimit)
	}
	if c.Search.MaxFilterValues < 1 {
		return fmt.Errorf("SEARCH_MAX_FILTER_VALUES must be positive")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("DB_RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.Retry.Multiplier < 1 {
		return fmt.Errorf("DB_RETRY_MULTIPLIER must be >= 1")
	}
	if c.Cache.MaxAgeSeconds < 0 {
		return fmt.Errorf("CACHE_MAX_AGE_SECONDS cannot be negative")
	}
	if c.Performance.WarnRatio <= 0 || c.Performance.WarnRatio > 1 {
		return fmt.Errorf("PERF_WARN_RATIO must be in (0, 1]")
	}
	return nil
}

// IsProduction reports whether diagnostic details must be hidden from clients
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// envReader collects parse warnings until a logger exists to report them
type envReader struct {
	warnings []string
}

func (e *envReader) warnf(format string, args ...any) {
	e.warnings = append(e.warnings, fmt.Sprintf(format, args...))
}

func (e *envReader) getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		e.warnf("invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func (e *envReader) getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		e.warnf("invalid float value for %s, using default %g", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("250ms") or bare milliseconds ("250")
func (e *envReader) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		e.warnf("invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
