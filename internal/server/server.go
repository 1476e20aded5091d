// Package server provides the HTTP API for NextStep.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/nextstep/internal/agent"
	"github.com/hyperjump/nextstep/internal/catalog"
	"github.com/hyperjump/nextstep/internal/config"
	"github.com/hyperjump/nextstep/internal/search"
	"go.uber.org/zap"
)

// Server is the HTTP server for the NextStep API.
type Server struct {
	agent    *agent.Agent
	engine   *search.Engine
	catalog  *catalog.Catalog
	sessions *sessionStore
	maxBody  int64
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. cfg is reported by
// the status endpoint and supplies the listen address.
func NewServer(
	a *agent.Agent,
	engine *search.Engine,
	cat *catalog.Catalog,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Server{
		agent:    a,
		engine:   engine,
		catalog:  cat,
		sessions: newSessionStore(cfg.Server.MaxConversations, cfg.Server.ConversationTTL),
		maxBody:  cfg.Server.MaxBodyBytes,
		config:   cfg,
		logger:   logger,
	}
}

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/conversations", s.handleStartConversation)
		r.Route("/conversations/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetConversation)
			r.Post("/messages", s.handleMessage)
			r.Delete("/", s.handleClearConversation)
		})
		r.Post("/search", s.handleSearch)
		r.Get("/resources", s.handleListResources)
		r.Post("/resources", s.handleAddResource)
		r.Get("/resources/{id}", s.handleGetResource)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
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
