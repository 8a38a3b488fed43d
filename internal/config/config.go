// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Security  SecurityConfig
	Rate      RateLimitConfig
	Logging   LoggingConfig
	Export    ExportConfig
	Retention RetentionConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 0, exports stream)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for non-export requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxBodyBytes limits submission request bodies (default: 1MB)
	MaxBodyBytes int64 `env:"SERVER_MAX_BODY_BYTES" default:"1048576"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Migrate applies the schema on startup (default: true)
	Migrate bool `env:"DB_MIGRATE" default:"true"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables API key authentication for /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// RateLimitConfig holds rate limiting settings for public submissions.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// SubmissionsPerMinute is the submission limit per client IP (default: 30)
	SubmissionsPerMinute int `env:"RATE_LIMIT_SUBMISSIONS_PER_MINUTE" default:"30"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ExportConfig holds export settings.
type ExportConfig struct {
	// ProfilesFile is a YAML file of named export profiles (default: built-in profile only)
	ProfilesFile string `env:"EXPORT_PROFILES_FILE"`

	// LabelsFile is a YAML file of column label translations
	LabelsFile string `env:"EXPORT_LABELS_FILE"`

	// DefaultLanguage is used when a request matches no label language (default: en)
	DefaultLanguage string `env:"EXPORT_DEFAULT_LANGUAGE" default:"en"`

	// OutputDir is where file exports are written (default: current directory)
	OutputDir string `env:"EXPORT_OUTPUT_DIR" default:"."`

	// Timeout is the maximum duration for a single export (default: 10m)
	Timeout time.Duration `env:"EXPORT_TIMEOUT" default:"10m"`
}

// RetentionConfig holds log entry retention settings.
type RetentionConfig struct {
	// Days is how long entries are kept; 0 disables purging (default: 0)
	Days int `env:"RETENTION_DAYS" default:"0"`

	// Schedule is the cron spec for the purge job (default: @daily)
	Schedule string `env:"RETENTION_SCHEDULE" default:"@daily"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes metrics on Path (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`

	// Path is the metrics endpoint (default: /metrics)
	Path string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
