package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/platformbuilds/search-gateway/internal/api/middleware"
	"github.com/platformbuilds/search-gateway/internal/config"
	"github.com/platformbuilds/search-gateway/internal/orchestrator"
	"github.com/platformbuilds/search-gateway/pkg/logger"
)

// Server wires the gin router onto the orchestrator registry (spec.md §6).
type Server struct {
	config     *config.Config
	logger     logger.Logger
	registry   *orchestrator.Registry
	router     *gin.Engine
	httpServer *http.Server
}

func NewServer(cfg *config.Config, log logger.Logger, registry *orchestrator.Registry) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	server := &Server{
		config:   cfg,
		logger:   log,
		registry: registry,
		router:   router,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORSMiddleware(s.config.CORSOrigins))
	s.router.Use(middleware.RequestLogger(s.logger))
	s.router.Use(middleware.MetricsMiddleware())
	s.router.Use(middleware.ErrorHandler(s.logger))
}

// setupRoutes mirrors spec.md §6's route table exactly. Every path below
// /:handle requires the bearer token whenever an apiKey is configured;
// /health and the OpenAPI docs stay public.
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.registry.Health)
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authed := s.router.Group("/")
	authed.Use(middleware.AuthMiddleware(s.config.APIKey))

	authed.POST("/cache/clear", s.registry.CacheClear)
	authed.GET("/indexes", s.registry.Indexes)

	handle := authed.Group("/:handle")
	handle.GET("/search", s.registry.Search)
	handle.GET("/autocomplete", s.registry.Autocomplete)
	handle.GET("/documents/:id", s.registry.GetDocument)
	handle.GET("/mapping", s.registry.GetMapping)
	handle.POST("/query", s.registry.RawQuery)
	handle.GET("/facets/:field", s.registry.FacetValues)
	handle.POST("/instantsearch", s.registry.InstantSearch)
}

// Start runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully (spec.md §6).
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         config.PortString(s.config.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("search gateway starting", "port", s.config.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
