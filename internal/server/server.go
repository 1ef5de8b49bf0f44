// Package server provides the HTTP API for Kotae.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/knowledge"
	"github.com/hyperjump/kotae/internal/metrics"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
)

const (
	maxBodyBytes   = 1 << 20
	requestTimeout = 90 * time.Second
)

// Answerer replies to a conversation.
type Answerer interface {
	Answer(ctx context.Context, messages []models.ChatMessage) (*models.Answer, error)
}

// EntryStore serves and reloads knowledge entries.
type EntryStore interface {
	List(ctx context.Context, offset, limit int) (*models.EntryList, error)
	Search(ctx context.Context, query string, limit int) (*models.EntryList, error)
	Get(ctx context.Context, id string) (*models.KnowledgeEntry, error)
	Refresh(ctx context.Context) (knowledge.RefreshResult, error)
	Info(ctx context.Context) (storage.SnapshotInfo, error)
	SourceName() string
}

// Server is the HTTP server for the Kotae API.
type Server struct {
	answerer Answerer
	entries  EntryStore
	config   *config.Config
	metrics  *metrics.Manager
	logger   *zap.Logger
	server   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request metrics and serves /metrics.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer creates a server with the given dependencies.
func NewServer(answerer Answerer, entries EntryStore, cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		answerer: answerer,
		entries:  entries,
		config:   cfg,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(s.instrument)

	r.Post("/api/chat", s.handleChat)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/entries", s.handleListEntries)
		r.Post("/entries/refresh", s.handleRefresh)
		r.Get("/entries/{id}", s.handleGetEntry)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
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

// instrument records request counts and latency by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.RecordHTTPRequest(route, r.Method, strconv.Itoa(status), time.Since(start))
	})
}
