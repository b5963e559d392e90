package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/config"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/api/handlers"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/api/middleware"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/feeds"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/metrics"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/services"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/tracing"
)

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
	service    *services.ClassificationService
	feeds      *feeds.Service
	metrics    *metrics.Metrics
	tracer     tracing.Tracer
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.Config,
	service *services.ClassificationService,
	feedsService *feeds.Service,
	m *metrics.Metrics,
	tracer tracing.Tracer,
) *Server {
	server := &Server{
		config:  cfg,
		service: service,
		feeds:   feedsService,
		metrics: m,
		tracer:  tracer,
	}

	router := server.setupRouter()
	server.router = router

	httpServer := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
	}
	server.httpServer = httpServer

	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	if s.config.CorsEnabled {
		router.Use(middleware.CORS(s.config.CorsOrigins))
	}

	// Register handlers
	classifierHandler := handlers.NewClassifierHandler(s.service, s.tracer)
	classifierHandler.RegisterRoutes(router)

	feedsHandler := handlers.NewFeedsHandler(s.feeds)
	feedsHandler.RegisterRoutes(router)

	if s.config.MetricsEnabled {
		metricsHandler := handlers.NewMetricsHandler(s.metrics, s.tracer)
		metricsHandler.RegisterRoutes(router)
	}

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	// Create a timeout context for shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}
