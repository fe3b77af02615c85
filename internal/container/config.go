// Package container provides dependency injection and lifecycle management
// for the travel planner following Clean Architecture principles.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// OpenAI-compatible LLM configuration
	OpenAI OpenAIConfig

	// Geocoding API configuration
	Geocode GeocodeConfig

	// Extraction chain configuration
	Extraction ExtractionConfig

	// Export configuration
	Export ExportConfig

	// Server configuration
	Server ServerConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration

	// AutoMigrate applies the embedded migrations on start
	AutoMigrate bool
}

// OpenAIConfig holds the server-wide LLM settings.
type OpenAIConfig struct {
	// APIKey is the server key; users may bring their own
	APIKey string

	// BaseURL points at any OpenAI-compatible endpoint
	BaseURL string

	// Model is the default model
	Model string

	// PromptsPath overrides the embedded prompts when set
	PromptsPath string
}

// GeocodeConfig holds the map API settings.
type GeocodeConfig struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

// ExtractionConfig controls the remote-first extraction chain.
type ExtractionConfig struct {
	// RemoteEnabled turns LLM extraction on; off means heuristic only
	RemoteEnabled bool

	// Timeout bounds one remote extraction call
	Timeout time.Duration

	// ItineraryTimeout bounds one itinerary generation call
	ItineraryTimeout time.Duration
}

// ExportConfig holds document export settings.
type ExportConfig struct {
	// PDFFontPath is a TTF font with CJK glyphs for itinerary PDFs
	PDFFontPath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	JWTSecret    string
	CORSOrigins  []string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/travel.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			AutoMigrate:     true,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Geocode: GeocodeConfig{
			BaseURL:   "https://restapi.amap.com",
			Timeout:   5 * time.Second,
			RateLimit: 3,
			Burst:     3,
		},
		Extraction: ExtractionConfig{
			RemoteEnabled:    true,
			Timeout:          15 * time.Second,
			ItineraryTimeout: 60 * time.Second,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second,
			CORSOrigins:  []string{"*"},
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Server.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Extraction.Timeout <= 0 {
		return fmt.Errorf("extraction.timeout must be positive")
	}

	return nil
}
