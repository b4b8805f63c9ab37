// Package config loads and validates the OSCA IMS configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the OSCA_ prefix (e.g., OSCA_DATABASE_HOST
// overrides database.host in the YAML). This layering allows the same binary to
// run with a config.yaml in local development and with pure environment variables
// in containerized deployments — no recompilation or different binaries needed.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	SMS       SMSConfig       `mapstructure:"sms"`
	Assets    AssetsConfig    `mapstructure:"assets"`
	Retention RetentionConfig `mapstructure:"retention"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	BaseURL      string        `mapstructure:"base_url"`
	FrontendURL  string        `mapstructure:"frontend_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MinIdleConnections int    `mapstructure:"min_idle_connections"`
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	// CookieName is the name of the session cookie sent to the browser
	CookieName string `mapstructure:"cookie_name"`
	// Secret signs the session token; required in production
	Secret string `mapstructure:"secret"`
	// TTL is how long a session stays valid after login
	TTL time.Duration `mapstructure:"ttl"`
	// SecureCookie marks the cookie Secure (HTTPS-only deployments)
	SecureCookie bool `mapstructure:"secure_cookie"`
}

// SMSConfig holds the outbound SMS gateway configuration
type SMSConfig struct {
	// GatewayURL is the Semaphore-compatible message submission endpoint
	GatewayURL string `mapstructure:"gateway_url"`
	// Timeout bounds the gateway HTTP call so a slow provider cannot
	// stall request handlers
	Timeout time.Duration `mapstructure:"timeout"`
	// CredentialSecret, when set, encrypts the stored gateway API key at
	// rest with a key derived from this passphrase
	CredentialSecret string `mapstructure:"credential_secret"`
}

// AssetsConfig holds the external image store configuration
type AssetsConfig struct {
	// DestroyURL is the endpoint used to release a previously uploaded asset
	DestroyURL string `mapstructure:"destroy_url"`
	// APIKey authenticates destroy requests
	APIKey string `mapstructure:"api_key"`
	// Timeout bounds each destroy attempt
	Timeout time.Duration `mapstructure:"timeout"`
	// RetryAttempts is how many times a failed destroy is retried
	RetryAttempts int `mapstructure:"retry_attempts"`
	// RetryBackoff is the fixed delay between attempts
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// RetentionConfig controls the soft-delete purge sweep
type RetentionConfig struct {
	// SoftDeleteWindow is how long soft-deleted citizens are kept before
	// the sweep permanently removes them
	SoftDeleteWindow time.Duration `mapstructure:"soft_delete_window"`
	// SweepInterval is how often the purge job runs
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	// SweepBatchSize bounds a single sweep's DELETE so the job never holds
	// long-lived locks against live traffic
	SweepBatchSize int `mapstructure:"sweep_batch_size"`
	// AuditLogWindow is how long audit entries are kept before the prune
	// sweep removes them. Zero disables audit pruning entirely.
	AuditLogWindow time.Duration `mapstructure:"audit_log_window"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
}

// RateLimitingConfig holds rate limiting configuration
type RateLimitingConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// bindEnvVars explicitly binds environment variables to config keys.
// This is necessary because AutomaticEnv() doesn't work well with nested structs during Unmarshal.
// viper.BindEnv only errors when called with zero keys; since every key here is a non-empty
// hardcoded string, any error indicates a programming bug and is surfaced to the caller.
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		// Server
		"server.host",
		"server.port",
		"server.base_url",
		"server.frontend_url",
		"server.read_timeout",
		"server.write_timeout",

		// Database
		"database.host",
		"database.port",
		"database.name",
		"database.user",
		"database.password",
		"database.ssl_mode",
		"database.max_connections",
		"database.min_idle_connections",

		// Session
		"session.cookie_name",
		"session.secret",
		"session.ttl",
		"session.secure_cookie",

		// SMS gateway
		"sms.gateway_url",
		"sms.timeout",
		"sms.credential_secret",

		// Asset store
		"assets.destroy_url",
		"assets.api_key",
		"assets.timeout",
		"assets.retry_attempts",
		"assets.retry_backoff",

		// Retention
		"retention.soft_delete_window",
		"retention.sweep_interval",
		"retention.sweep_batch_size",
		"retention.audit_log_window",

		// Security
		"security.cors.allowed_origins",
		"security.cors.allowed_methods",
		"security.rate_limiting.enabled",
		"security.rate_limiting.requests_per_minute",
		"security.rate_limiting.burst",

		// Logging
		"logging.level",
		"logging.format",

		// Telemetry
		"telemetry.enabled",
		"telemetry.prometheus_port",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env var %q: %w", key, err)
		}
	}
	return nil
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/osca-ims")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables
	}

	v.SetEnvPrefix("OSCA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Expand environment variables in sensitive fields
	cfg.Database.Password = os.ExpandEnv(cfg.Database.Password)
	cfg.Session.Secret = os.ExpandEnv(cfg.Session.Secret)
	cfg.Assets.APIKey = os.ExpandEnv(cfg.Assets.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.base_url", "http://localhost:3000")
	v.SetDefault("server.frontend_url", "http://localhost:5173")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "osca_ims")
	v.SetDefault("database.user", "osca")
	v.SetDefault("database.ssl_mode", "require")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_idle_connections", 5)

	// Session defaults
	v.SetDefault("session.cookie_name", "oscaims_sid")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.secure_cookie", false)

	// SMS gateway defaults
	v.SetDefault("sms.gateway_url", "https://api.semaphore.co/api/v4/messages")
	v.SetDefault("sms.timeout", "15s")

	// Asset store defaults
	v.SetDefault("assets.timeout", "10s")
	v.SetDefault("assets.retry_attempts", 3)
	v.SetDefault("assets.retry_backoff", "1s")

	// Retention defaults
	v.SetDefault("retention.soft_delete_window", "720h") // 30 days
	v.SetDefault("retention.sweep_interval", "24h")
	v.SetDefault("retention.sweep_batch_size", 500)
	v.SetDefault("retention.audit_log_window", "8760h") // one year

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("security.rate_limiting.enabled", true)
	v.SetDefault("security.rate_limiting.requests_per_minute", 200)
	v.SetDefault("security.rate_limiting.burst", 50)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}

	if c.Retention.SoftDeleteWindow <= 0 {
		return fmt.Errorf("retention.soft_delete_window must be positive")
	}
	if c.Retention.SweepBatchSize < 1 {
		return fmt.Errorf("retention.sweep_batch_size must be at least 1")
	}
	if c.Retention.AuditLogWindow < 0 {
		return fmt.Errorf("retention.audit_log_window must not be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetAddress returns the server address in host:port format
func (c *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
