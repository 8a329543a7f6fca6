// Package config loads application configuration from environment variables.
// All variables use the LEARN_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Content sources.
const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Content  ContentConfig
	Grading  GradingConfig
	Session  SessionConfig
	Events   EventsConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables the database.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Dragonfly/Redis connection settings. An empty URL keeps
// sessions in process memory.
type CacheConfig struct {
	URL string
}

// ContentConfig selects where lessons are loaded from.
type ContentConfig struct {
	Source string // "embedded", "dir" or "postgres"
	Path   string // directory for the "dir" source
}

// GradingConfig holds answer evaluation settings.
type GradingConfig struct {
	PassThreshold float64
}

// SessionConfig holds assessment session settings.
type SessionConfig struct {
	TTLMinutes int
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// EventsConfig controls analytics event persistence.
type EventsConfig struct {
	Enabled bool
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with LEARN_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("LEARN_SERVER_PORT", 8080),
			Host: envStr("LEARN_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("LEARN_DATABASE_URL", ""),
			MaxConns: envInt("LEARN_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("LEARN_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL: envStr("LEARN_CACHE_URL", ""),
		},
		Content: ContentConfig{
			Source: strings.ToLower(envStr("LEARN_CONTENT_SOURCE", SourceEmbedded)),
			Path:   envStr("LEARN_CONTENT_PATH", ""),
		},
		Grading: GradingConfig{
			PassThreshold: envFloat("LEARN_GRADING_PASS_THRESHOLD", 0.5),
		},
		Session: SessionConfig{
			TTLMinutes: envInt("LEARN_SESSION_TTL_MINUTES", 120),
		},
		Events: EventsConfig{
			Enabled: envBool("LEARN_EVENTS_ENABLED", false),
		},
		Log: LogConfig{
			Level:  envStr("LEARN_LOG_LEVEL", "info"),
			Format: envStr("LEARN_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that the configuration is consistent.
func (c *Config) Validate() error {
	switch c.Content.Source {
	case SourceEmbedded:
	case SourceDir:
		if c.Content.Path == "" {
			return fmt.Errorf("LEARN_CONTENT_PATH is required when LEARN_CONTENT_SOURCE is %q", SourceDir)
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("LEARN_DATABASE_URL is required when LEARN_CONTENT_SOURCE is %q", SourcePostgres)
		}
	default:
		return fmt.Errorf("LEARN_CONTENT_SOURCE must be 'embedded', 'dir' or 'postgres', got %q", c.Content.Source)
	}

	if c.Grading.PassThreshold <= 0 || c.Grading.PassThreshold > 1 {
		return fmt.Errorf("LEARN_GRADING_PASS_THRESHOLD must be in (0, 1], got %v", c.Grading.PassThreshold)
	}

	if c.Session.TTLMinutes < 0 {
		return fmt.Errorf("LEARN_SESSION_TTL_MINUTES must not be negative, got %d", c.Session.TTLMinutes)
	}

	if c.Events.Enabled && c.Database.URL == "" {
		return fmt.Errorf("LEARN_DATABASE_URL is required when LEARN_EVENTS_ENABLED is set")
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("LEARN_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// HasDatabase returns true if a PostgreSQL URL is configured.
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
