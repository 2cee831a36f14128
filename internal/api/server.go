// Package api exposes the HTTP surface: uploads, task polling, results,
// saved region images, and model latency stats.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chartsight/chartsight/internal/config"
	"github.com/chartsight/chartsight/internal/insight"
	"github.com/chartsight/chartsight/internal/pipeline"
	"github.com/chartsight/chartsight/internal/store"
)

// Server is the HTTP API server for chartsight.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	results      *store.Store
	stats        *insight.ModelStats
	modelName    string
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, results *store.Store, stats *insight.ModelStats, modelName string, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		results:      results,
		stats:        stats,
		modelName:    modelName,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Post("/api/pdf/upload", s.uploadHandler(pdfExtensions))
	r.Post("/api/image/upload", s.uploadHandler(imageExtensions))
	r.Post("/api/document/upload", s.uploadHandler(documentExtensions))
	r.Get("/api/tasks/{taskID}/status", s.handleTaskStatus)

	r.Get("/api/results", s.handleListResults)
	r.Get("/api/results/latest", s.handleLatestResult)
	r.Get("/api/results/{resultID}", s.handleGetResult)
	r.Delete("/api/results", s.handleClearResults)
	r.Get("/api/images/{imageID}", s.handleGetImage)

	r.Get("/api/stats/model", s.handleModelStats)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
