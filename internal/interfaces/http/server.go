// Package http provides the HTTP adapter over the application services.
// It translates requests into service calls and never contains business
// rules of its own.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/traveldesk/traveldesk/internal/application/port"
	"github.com/traveldesk/traveldesk/internal/application/service"
	"github.com/traveldesk/traveldesk/internal/settlement"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	StatementDir string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		StatementDir: "data/statements",
	}
}

// Server is the HTTP adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	travel     service.TravelService
	claims     service.ClaimService
	master     port.MasterDataRepository
	statements *settlement.Generator
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	travel service.TravelService,
	claims service.ClaimService,
	master port.MasterDataRepository,
	statements *settlement.Generator,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:     config,
		router:     gin.New(),
		travel:     travel,
		claims:     claims,
		master:     master,
		statements: statements,
		logger:     logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
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
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.travel, s.claims, s.master, s.statements, s.config.StatementDir, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		api.POST("/applications", handlers.CreateApplication)
		api.POST("/applications/validate", handlers.ValidateApplication)
		api.GET("/applications", handlers.ListApplications)
		api.GET("/applications/:id", handlers.GetApplication)
		api.GET("/applications/:id/payload", handlers.GetSubmissionPayload)
		api.POST("/applications/:id/actions", handlers.ApplicationAction)
		api.POST("/applications/:id/bookings/:bookingID/complete", handlers.CompleteBooking)

		api.POST("/claims", handlers.CreateClaim)
		api.GET("/claims/:id", handlers.GetClaim)
		api.POST("/claims/:id/items", handlers.AddClaimItem)
		api.PUT("/claims/:id/items/:clientRef/amount", handlers.UpdateClaimItemAmount)
		api.POST("/claims/:id/receipts", handlers.AttachReceipt)
		api.POST("/claims/:id/validate", handlers.ValidateClaim)
		api.POST("/claims/:id/submit", handlers.SubmitClaim)
		api.GET("/claims/:id/statement", handlers.GetStatement)

		md := api.Group("/masterdata")
		{
			md.GET("/locations", handlers.ListLocations)
			md.GET("/city-categories", handlers.ListCityCategories)
			md.GET("/travel-modes", handlers.ListTravelModes)
			md.GET("/gl-codes", handlers.ListGLCodes)
			md.GET("/grades", handlers.ListGrades)
			md.GET("/guest-houses", handlers.ListGuestHouses)
			md.GET("/expense-types", handlers.ListExpenseTypes)
		}
	}
}

// Start starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
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
