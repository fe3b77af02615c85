package config

import (
	"github.com/garyjia/ai-travel-planner/internal/container"
	"github.com/garyjia/ai-travel-planner/pkg/utils"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			AutoMigrate:     c.Database.AutoMigrate,
		},
		OpenAI: container.OpenAIConfig{
			APIKey:      c.OpenAI.APIKey,
			BaseURL:     c.OpenAI.BaseURL,
			Model:       c.OpenAI.Model,
			PromptsPath: c.OpenAI.PromptsPath,
		},
		Geocode: container.GeocodeConfig{
			APIKey:    c.Geocode.APIKey,
			BaseURL:   c.Geocode.BaseURL,
			Timeout:   c.Geocode.Timeout,
			RateLimit: c.Geocode.RateLimit,
			Burst:     c.Geocode.Burst,
		},
		Extraction: container.ExtractionConfig{
			RemoteEnabled:    c.Extraction.RemoteEnabled,
			Timeout:          c.Extraction.Timeout,
			ItineraryTimeout: c.Extraction.ItineraryTimeout,
		},
		Export: container.ExportConfig{
			PDFFontPath: c.Export.PDFFontPath,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
			JWTSecret:    c.Auth.JWTSecret,
			CORSOrigins:  c.Server.CORSOrigins,
		},
	}
}

// ToLoggerConfig converts the logger section for utils.NewLogger
func (c *Config) ToLoggerConfig(service string) utils.LoggerConfig {
	return utils.LoggerConfig{
		Level:      c.Logger.Level,
		OutputPath: c.Logger.OutputPath,
		Format:     c.Logger.Format,
		Service:    service,
	}
}
