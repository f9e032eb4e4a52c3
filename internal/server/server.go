// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the search and chat operations over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/pdiddy/pubmed-assistant/pkg/types"
)

// Backend is the service the handlers delegate to.
type Backend interface {
	Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error)
	Chat(ctx context.Context, pmid, message string) (string, error)
	CachedPapers() int
}

// Server is the HTTP server for the pubmed-assistant API.
type Server struct {
	backend           Backend
	config            types.ServerConfig
	defaultMaxResults int
	logger            *zap.Logger
	server            *http.Server
}

// NewServer creates a server for backend. defaultMaxResults is used when a
// search request does not specify max_results.
func NewServer(backend Backend, cfg types.ServerConfig, defaultMaxResults int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultMaxResults <= 0 {
		defaultMaxResults = types.DefaultMaxResults
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		backend:           backend,
		config:            cfg,
		defaultMaxResults: defaultMaxResults,
		logger:            logger,
	}
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: s.Handler(),
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodOptions, http.MethodHead,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         600,
	}))

	r.Get("/api/search", s.handleSearch)
	r.Post("/api/chat", s.handleChat)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops. After Stop it
// returns http.ErrServerClosed, including when Stop ran first.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server. It is safe to call concurrently
// with Start.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
