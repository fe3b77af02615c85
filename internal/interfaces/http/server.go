// Package http provides HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/ai-travel-planner/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RequestMetrics records served requests
type RequestMetrics interface {
	ObserveHTTP(method, route, status string, seconds float64)
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// JWTSecret verifies HS256 bearer tokens on /api routes
	JWTSecret   string
	CORSOrigins []string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		CORSOrigins:  []string{"*"},
	}
}

func (c ServerConfig) withDefaults() ServerConfig {
	d := DefaultServerConfig()
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.CORSOrigins == nil {
		c.CORSOrigins = d.CORSOrigins
	}
	return c
}

// Services groups the application services the API exposes
type Services struct {
	Expenses service.ExpenseService
	Trips    service.TripService
	Settings service.SettingsService
	Users    service.UserService
	Geo      service.GeoService
}

// Options carries the optional server collaborators
type Options struct {
	Metrics        RequestMetrics
	MetricsHandler http.Handler

	// HealthCheck is run by GET /health, typically a database ping
	HealthCheck func(ctx context.Context) error
}

// Server is the HTTP server adapter
type Server struct {
	config   ServerConfig
	router   *gin.Engine
	services Services
	opts     Options
	logger   Logger

	// mu guards httpServer, which Stop may touch from another goroutine
	mu         sync.Mutex
	httpServer *http.Server

	// users already upserted from a token in this process
	knownUsers sync.Map
}

// NewServer creates a new HTTP server with the given services. Zero-valued
// address and timeouts in config take their DefaultServerConfig values.
func NewServer(config ServerConfig, services Services, opts Options, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	config = config.withDefaults()

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		services: services,
		opts:     opts,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(corsMiddleware(s.config.CORSOrigins))
}

// loggingMiddleware logs every request and feeds the request metrics
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(requestIDKey),
		)

		if s.opts.Metrics != nil {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			s.opts.Metrics.ObserveHTTP(method, route, fmt.Sprintf("%d", status), latency.Seconds())
		}
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.opts.HealthCheck, s.logger)

	s.router.GET("/health", handlers.HealthCheck)
	if s.opts.MetricsHandler != nil {
		s.router.GET("/metrics", gin.WrapH(s.opts.MetricsHandler))
	}

	api := s.router.Group("/api")
	api.Use(s.authMiddleware())
	{
		api.POST("/parse/expense", handlers.ParseExpense)
		api.POST("/parse/trip", handlers.ParseTrip)

		api.GET("/trips", handlers.ListTrips)
		api.POST("/trips", handlers.CreateTrip)
		api.POST("/trips/plan", handlers.PlanTrip)
		api.GET("/trips/:id", handlers.GetTrip)
		api.PUT("/trips/:id", handlers.UpdateTrip)
		api.DELETE("/trips/:id", handlers.DeleteTrip)
		api.GET("/trips/:id/itinerary.pdf", handlers.ExportItinerary)

		api.GET("/trips/:id/expenses", handlers.ListExpenses)
		api.POST("/trips/:id/expenses", handlers.CreateExpense)
		api.GET("/trips/:id/expenses/summary", handlers.ExpenseSummary)
		api.GET("/trips/:id/expenses/export.xlsx", handlers.ExportExpenses)
		api.DELETE("/trips/:id/expenses/:expenseId", handlers.DeleteExpense)

		api.GET("/settings", handlers.GetSettings)
		api.PUT("/settings", handlers.UpdateSettings)

		api.GET("/geocode", handlers.Geocode)
		api.GET("/geocode/reverse", handlers.ReverseGeocode)
	}
}

// Start serves until ctx is done or the listener fails. It returns an
// error when the server is already running.
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return fmt.Errorf("http server already running on %s", addr)
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		s.mu.Lock()
		if s.httpServer == srv {
			s.httpServer = nil
		}
		s.mu.Unlock()
		return err
	}
}

// Running reports whether Start has a live listener
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.httpServer != nil
}

// Stop gracefully stops the HTTP server. It is safe to call repeatedly and
// concurrently with Start.
func (s *Server) Stop() error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
