package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/couchcryptid/water-quality-etl/internal/grouping"
	"github.com/couchcryptid/water-quality-etl/internal/pipeline"
	"github.com/couchcryptid/water-quality-etl/internal/table"
)

// Service is the read and reload surface the API exposes. *pipeline.Pipeline
// implements it.
type Service interface {
	Reload(ctx context.Context, path string, categories []domain.Category) (pipeline.Report, error)
	Records(c domain.Category, q pipeline.Query) ([]domain.Measurement, error)
	Record(c domain.Category, id string) (domain.Measurement, string, error)
	Options(c domain.Category) (table.Options, error)
	Groups(c domain.Category) (pipeline.GroupList, error)
	Chart(c domain.Category, key string) (grouping.Chart, error)
	Summary() []pipeline.CategorySummary
}

// Server exposes health, readiness, metrics and the sample data API.
type Server struct {
	httpServer *http.Server
	svc        Service
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the /v1 API routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, svc Service, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/load", s.handleLoad)
	mux.HandleFunc("GET /v1/categories", s.handleCategories)
	mux.HandleFunc("GET /v1/summary", s.handleSummary)
	mux.HandleFunc("GET /v1/categories/{category}/records", s.handleRecords)
	mux.HandleFunc("GET /v1/categories/{category}/records/{id}", s.handleRecord)
	mux.HandleFunc("GET /v1/categories/{category}/options", s.handleOptions)
	mux.HandleFunc("GET /v1/categories/{category}/groups", s.handleGroups)
	mux.HandleFunc("GET /v1/categories/{category}/groups/{key...}", s.handleChart)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
