package container

import (
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/garyjia/ai-travel-planner/internal/application/extraction"
	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/application/service"
	"github.com/garyjia/ai-travel-planner/internal/infrastructure/export"
	"github.com/garyjia/ai-travel-planner/internal/infrastructure/external/geocode"
	"github.com/garyjia/ai-travel-planner/internal/infrastructure/external/openai"
	"github.com/garyjia/ai-travel-planner/internal/infrastructure/metrics"
	"github.com/garyjia/ai-travel-planner/internal/infrastructure/persistence/repository"
	"github.com/garyjia/ai-travel-planner/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/ai-travel-planner/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// MetricsBundle holds the collectors and the registry they are exposed from.
type MetricsBundle struct {
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

// ExportBundle holds the document exporters.
type ExportBundle struct {
	Expenses  port.ExpenseExporter
	Itinerary port.ItineraryExporter
}

// ProvideDatabase opens the database, applies pending migrations when
// enabled and wraps the connection in a transaction manager.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		applied, err := database.NewMigrator(db, logger).Run()
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("Migrations checked", zap.Int("applied", applied))
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Users:      repository.NewUserRepository(sqlDB, logger),
		Trips:      repository.NewTripRepository(sqlDB, logger),
		DailyPlans: repository.NewDailyPlanRepository(sqlDB, logger),
		Expenses:   repository.NewExpenseRepository(sqlDB, logger),
		Settings:   repository.NewSettingsRepository(sqlDB, logger),
	}, nil
}

// ProvideMetrics creates the collectors on a dedicated registry that also
// carries the Go runtime and process collectors.
func ProvideMetrics() *MetricsBundle {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &MetricsBundle{
		Metrics:  metrics.New(reg),
		Registry: reg,
	}
}

// ProvideExtractionChain creates the remote-first extraction chain. With
// remote extraction disabled the chain runs the heuristic only.
func ProvideExtractionChain(openaiCfg *OpenAIConfig, cfg *ExtractionConfig, recorder extraction.Recorder, logger *zap.Logger) (*extraction.Chain, error) {
	if openaiCfg == nil || cfg == nil {
		return nil, fmt.Errorf("extraction config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	chainLogger := &zapLoggerAdapter{logger: logger.Named("extraction")}
	if !cfg.RemoteEnabled {
		logger.Info("Remote extraction disabled, using heuristic parser only")
		return extraction.NewChain(nil, cfg.Timeout, chainLogger, recorder), nil
	}

	prompts, err := openai.LoadPrompts(openaiCfg.PromptsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	factory := openai.NewFactory(prompts, openaiCfg.Model, logger.Named("openai"))
	return extraction.NewChain(factory, cfg.Timeout, chainLogger, recorder), nil
}

// ProvideGeocoder creates the AMap client. It is created even without a
// server key since users may configure their own.
func ProvideGeocoder(cfg *GeocodeConfig, recorder geocode.Recorder, logger *zap.Logger) (port.Geocoder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("geocode config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return geocode.NewClient(geocode.Config{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
	}, recorder, logger.Named("geocode")), nil
}

// ProvideExporters creates the xlsx and PDF exporters.
func ProvideExporters(cfg *ExportConfig, logger *zap.Logger) (*ExportBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("export config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &ExportBundle{
		Expenses:  export.NewExpenseWorkbook(logger),
		Itinerary: export.NewItineraryPDF(cfg.PDFFontPath, logger),
	}, nil
}

// ServiceDeps holds dependencies required for creating services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Extractor  service.DraftExtractor
	Geocoder   port.Geocoder
	Exporters  *ExportBundle
	ServerKeys service.ServerKeys
	TripOpts   service.TripOptions
	Logger     *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}
	if deps.Extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if deps.Exporters == nil {
		return nil, fmt.Errorf("exporters are required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}

	settings := service.NewSettingsService(deps.Repos.Settings, deps.ServerKeys, serviceLogger)

	return &ServiceBundle{
		Settings: settings,
		Users:    service.NewUserService(deps.Repos.Users, serviceLogger),
		Expenses: service.NewExpenseService(
			deps.Repos.Trips,
			deps.Repos.Expenses,
			settings,
			deps.Extractor,
			deps.Exporters.Expenses,
			serviceLogger,
		),
		Trips: service.NewTripService(
			deps.Repos.Trips,
			deps.Repos.DailyPlans,
			deps.TxManager,
			settings,
			deps.Extractor,
			deps.Geocoder,
			deps.Exporters.Itinerary,
			deps.TripOpts,
			serviceLogger,
		),
		Geo: service.NewGeoService(deps.Geocoder, settings),
	}, nil
}
