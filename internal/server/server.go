// Package server provides the web UI and HTTP API for qdocs.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/qdocs/internal/config"
	"github.com/hyperjump/qdocs/internal/documents"
	"github.com/hyperjump/qdocs/internal/extract"
	"github.com/hyperjump/qdocs/internal/view"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server is the HTTP server for the document UI and API.
type Server struct {
	service   *documents.Service
	extractor *extract.Extractor
	states    *view.EditStates
	templates *template.Template
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	service *documents.Service,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		service:   service,
		extractor: extract.NewExtractor(),
		states:    view.NewEditStates(),
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
		config:    cfg,
		logger:    logger,
	}
}

// Routes returns the router with all UI and API routes mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleIndex)
	r.Post("/upload", s.handleUploadPreview)
	r.Post("/upload/confirm", s.handleUploadConfirm)
	r.Post("/search", s.handleSearchPage)
	r.Route("/documents/{id}", func(r chi.Router) {
		r.Post("/edit", s.handleEdit)
		r.Post("/save", s.handleSave)
		r.Post("/cancel", s.handleCancel)
		r.Post("/delete", s.handleDeletePage)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/documents", s.handleListDocuments)
		r.Post("/documents", s.handleCreateDocument)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Put("/documents/{id}", s.handleModifyDocument)
		r.Delete("/documents/{id}", s.handleDeleteDocument)
		r.Post("/search", s.handleSearch)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
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
