// Package server exposes the research pipeline over HTTP: a one-shot
// JSON endpoint plus SSE and websocket variants that stream progress.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"deepresearch/internal/research"
)

// Config holds server configuration.
type Config struct {
	Port          int
	AllowAll      bool // allow all CORS origins (dev mode)
	DefaultFormat string
}

// StandardResearcher runs the search-and-synthesize flow.
type StandardResearcher interface {
	Research(ctx context.Context, query string, maxResults int, timeFilter string, onProgress research.ProgressFunc) (*research.Report, error)
}

// ComprehensiveResearcher runs the plan / fan-out / compile flow.
type ComprehensiveResearcher interface {
	GenerateComprehensiveReport(ctx context.Context, query string, onProgress research.ProgressFunc) (*research.ComprehensiveReport, error)
}

// ProFactory builds a ComprehensiveResearcher for a per-request
// sub-query cap.
type ProFactory func(maxQuestions int) ComprehensiveResearcher

// Server is the research API server.
type Server struct {
	cfg        Config
	standard   StandardResearcher
	pro        ProFactory
	logger     *zap.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server over the given research implementations.
func New(cfg Config, standard StandardResearcher, pro ProFactory, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "markdown"
	}
	s := &Server{
		cfg:      cfg,
		standard: standard,
		pro:      pro,
		logger:   logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"deepresearch"}`))
	})

	r.Post("/api/research", s.handleResearch)
	r.Post("/api/research/stream", s.handleResearchStream)
	r.Get("/api/research/ws", s.handleResearchWS)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// Research runs are long; write timeout must outlast a full
		// pro-mode fan-out.
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("server_listening", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
