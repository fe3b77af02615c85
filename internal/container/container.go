package container

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/garyjia/ai-travel-planner/internal/application/extraction"
	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/application/service"
	"github.com/garyjia/ai-travel-planner/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/garyjia/ai-travel-planner/internal/interfaces/http"
	"github.com/garyjia/ai-travel-planner/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// It follows Clean Architecture principles with ordered initialization
// and reverse-order teardown.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure - Data
	db           *database.DB
	txManager    *sqlite.DB
	repositories *RepositoryBundle

	// Infrastructure - Observability
	metrics *MetricsBundle

	// Infrastructure - External
	chain     *extraction.Chain
	geocoder  port.Geocoder
	exporters *ExportBundle

	// Application
	services *ServiceBundle

	// Interfaces
	server *httpserver.Server

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Users      port.UserRepository
	Trips      port.TripRepository
	DailyPlans port.DailyPlanRepository
	Expenses   port.ExpenseRepository
	Settings   port.SettingsRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Expenses service.ExpenseService
	Trips    service.TripService
	Settings service.SettingsService
	Users    service.UserService
	Geo      service.GeoService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components. Components are initialized in
// dependency order:
// 1. Database, migrations and repositories
// 2. Metrics
// 3. External clients (LLM chain, geocoder, exporters)
// 4. Application services
// 5. HTTP server
//
// Start does not begin serving; call Server().Start for that.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	c.metrics = ProvideMetrics()

	if err := c.initExternalClients(); err != nil {
		_ = c.closeDatabase()
		return fmt.Errorf("failed to initialize external clients: %w", err)
	}
	c.logger.Info("External clients initialized",
		zap.Bool("remote_extraction", c.config.Extraction.RemoteEnabled),
		zap.Bool("server_llm_key", c.config.OpenAI.APIKey != ""),
		zap.Bool("server_map_key", c.config.Geocode.APIKey != ""))

	if err := c.initServices(); err != nil {
		_ = c.closeDatabase()
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.logger.Info("Application services initialized")

	c.initServer()

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			c.logger.Error("Failed to stop HTTP server", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop server: %w", err))
		}
	}

	if err := c.closeDatabase(); err != nil {
		errs = append(errs, err)
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) closeDatabase() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	if err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
		return fmt.Errorf("close database: %w", err)
	}
	c.logger.Info("Database closed")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if c.db != nil {
		if err := c.db.Health(ctx); err != nil {
			status.Components["database"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	} else {
		status.Components["database"] = ComponentHealth{
			Healthy: false,
			Message: "not initialized",
		}
		status.Overall = false
	}

	if c.services != nil {
		status.Components["services"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["services"] = ComponentHealth{
			Healthy: false,
			Message: "not initialized",
		}
		status.Overall = false
	}

	// the heuristic keeps extraction working without a key, so this is informational
	llm := ComponentHealth{Healthy: true, Message: "heuristic only"}
	if c.config.Extraction.RemoteEnabled && c.config.OpenAI.APIKey != "" {
		llm.Message = "remote with heuristic fallback"
	}
	status.Components["extraction"] = llm

	// informational: the server is built by Start but served by the caller
	httpHealth := ComponentHealth{Healthy: true, Message: "not serving"}
	if c.server != nil && c.server.Running() {
		httpHealth.Message = "serving on " + c.server.Address()
	}
	status.Components["http"] = httpHealth

	return status
}

func (c *Container) initDatabase() error {
	dbBundle, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return err
	}

	c.db = dbBundle.DB
	c.txManager = dbBundle.TransactionMgr

	repos, err := ProvideRepositories(c.db.DB, c.logger)
	if err != nil {
		_ = c.closeDatabase()
		return err
	}

	c.repositories = repos
	return nil
}

func (c *Container) initExternalClients() error {
	chain, err := ProvideExtractionChain(&c.config.OpenAI, &c.config.Extraction, c.metrics.Metrics, c.logger)
	if err != nil {
		return err
	}
	c.chain = chain

	geocoder, err := ProvideGeocoder(&c.config.Geocode, c.metrics.Metrics, c.logger)
	if err != nil {
		return err
	}
	c.geocoder = geocoder

	exporters, err := ProvideExporters(&c.config.Export, c.logger)
	if err != nil {
		return err
	}
	c.exporters = exporters

	return nil
}

func (c *Container) initServices() error {
	services, err := ProvideServices(&ServiceDeps{
		Repos:     c.repositories,
		TxManager: c.txManager,
		Extractor: c.chain,
		Geocoder:  c.geocoder,
		Exporters: c.exporters,
		ServerKeys: service.ServerKeys{
			LLMAPIKey:     c.config.OpenAI.APIKey,
			LLMBaseURL:    c.config.OpenAI.BaseURL,
			LLMModel:      c.config.OpenAI.Model,
			MapAPIKey:     c.config.Geocode.APIKey,
			RemoteEnabled: c.config.Extraction.RemoteEnabled,
		},
		TripOpts: service.TripOptions{ItineraryTimeout: c.config.Extraction.ItineraryTimeout},
		Logger:   c.logger,
	})
	if err != nil {
		return err
	}

	c.services = services
	return nil
}

func (c *Container) initServer() {
	cfg := c.config.Server
	c.server = httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Host,
			Port:         cfg.Port,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			JWTSecret:    cfg.JWTSecret,
			CORSOrigins:  cfg.CORSOrigins,
		},
		httpserver.Services{
			Expenses: c.services.Expenses,
			Trips:    c.services.Trips,
			Settings: c.services.Settings,
			Users:    c.services.Users,
			Geo:      c.services.Geo,
		},
		httpserver.Options{
			Metrics:        c.metrics.Metrics,
			MetricsHandler: c.MetricsHandler(),
			HealthCheck:    pingDatabase(c.db),
		},
		&zapLoggerAdapter{logger: c.logger.Named("http")},
	)
}

func pingDatabase(db *database.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return db.Health(ctx)
	}
}

// Getters for accessing container components

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Extraction returns the extraction chain.
func (c *Container) Extraction() *extraction.Chain {
	return c.chain
}

// Server returns the HTTP server.
func (c *Container) Server() *httpserver.Server {
	return c.server
}

// MetricsHandler serves the container's metrics registry.
func (c *Container) MetricsHandler() http.Handler {
	if c.metrics == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.metrics.Registry, promhttp.HandlerOpts{})
}

// zapLoggerAdapter adapts zap.Logger to the keysAndValues Logger interfaces
// used by services, extraction and the HTTP layer.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.logger.Warn(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
