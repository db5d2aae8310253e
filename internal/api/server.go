package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"example.com/outcry/config"
	"example.com/outcry/internal/api/handlers"
	"example.com/outcry/internal/api/middleware"
	"example.com/outcry/internal/metrics"
	"example.com/outcry/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// maxMultipartMemory bounds the in-memory part of multipart parsing
const maxMultipartMemory = 32 << 20

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
	log        zerolog.Logger
}

// NewServer creates a new HTTP server. nrApp may be nil.
func NewServer(cfg config.Config, svc service.Service, collector *metrics.Collector, nrApp *newrelic.Application, logger zerolog.Logger) *Server {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	if collector == nil {
		collector = metrics.Default()
	}

	server := &Server{
		config: cfg,
		log:    logger.With().Str("component", "api").Logger(),
	}
	server.router = server.setupRouter(svc, collector, nrApp)
	server.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter(svc service.Service, collector *metrics.Collector, nrApp *newrelic.Application) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(s.config.CORS.Origins))
	router.Use(middleware.NewRelic(nrApp))
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.Logger(s.log))

	handler := handlers.NewHandler(svc, collector, s.log)
	handler.RegisterRoutes(router)

	return router
}

// Router exposes the configured engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.log.Info().Str("address", s.httpServer.Addr).Msg("Starting HTTP server")

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
	s.log.Info().Msg("Shutting down HTTP server")

	timeout := s.config.Server.GracefulTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	s.log.Info().Msg("HTTP server shut down successfully")
	return nil
}
