// Package server provides the HTTP API for Miru.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/miru/internal/archive"
	"github.com/hyperjump/miru/internal/catalog"
	"github.com/hyperjump/miru/internal/config"
	"github.com/hyperjump/miru/internal/metrics"
	"github.com/hyperjump/miru/internal/search"
)

// Server is the HTTP server for the Miru API.
type Server struct {
	engine    *search.Engine
	retriever *archive.Retriever
	store     *catalog.Store
	rebuilder *catalog.Rebuilder
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	retriever *archive.Retriever,
	store *catalog.Store,
	rebuilder *catalog.Rebuilder,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:    engine,
		retriever: retriever,
		store:     store,
		rebuilder: rebuilder,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(metrics.Middleware())

	r.Get("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/locations", s.handleLocations)
	// Entry names may contain slashes (nested archive paths), so the
	// remainder of the path is matched as a wildcard.
	r.Get("/api/v1/images/{location}/*", s.handleImage)
	r.Post("/api/v1/reindex", s.handleReindex)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
