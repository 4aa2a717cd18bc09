// Package server provides the HTTP API for portal search.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/portalsearch/internal/config"
	"github.com/hyperjump/portalsearch/internal/history"
	"github.com/hyperjump/portalsearch/internal/metrics"
	"github.com/hyperjump/portalsearch/internal/search"
	"github.com/hyperjump/portalsearch/internal/storage"
)

// Server is the HTTP server for the portal search API.
type Server struct {
	engine  *search.Engine
	store   storage.Storage
	history *history.Service
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	store storage.Storage,
	hist *history.Service,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:  engine,
		store:   store,
		history: hist,
		config:  cfg,
		logger:  logger,
	}
}

// Router returns the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(metrics.Middleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleGlobalSearch)
		r.Post("/search/{collection}", s.handleSearch)

		r.Get("/collections", s.handleListCollections)
		r.Delete("/collections/{collection}", s.handleDeleteCollection)
		r.Put("/collections/{collection}/records", s.handleUpsertRecords)
		r.Delete("/collections/{collection}/records/{id}", s.handleDeleteRecord)

		r.Get("/history", s.handleHistory)
		r.Post("/history", s.handleAddHistory)
		r.Delete("/history", s.handleClearHistory)
		r.Get("/popular", s.handlePopular)

		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
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
