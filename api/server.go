// Package api provides the read-only HTTP API for resellerdash.
//
// It exposes the normalized dashboard sections (snapshot, revenue series,
// delivery performance, top products and profit bands) to presentation
// components. Every data endpoint answers 200 even when the upstream failed;
// the payload then carries zeroed defaults.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/resellerdash/internal/config"
	"github.com/seenimoa/resellerdash/internal/logging"
	"github.com/seenimoa/resellerdash/internal/metrics"
	"github.com/seenimoa/resellerdash/pkg/models"
)

// Dashboard is the data source the API renders. *sheet.Gateway implements it.
type Dashboard interface {
	FetchAllSections(ctx context.Context) *models.Sections
	CacheFresh() bool
}

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	dash    Dashboard
	metrics *metrics.Metrics // nil disables instrumentation and /metrics
	logger  *slog.Logger
	version string
}

// Options configures optional server collaborators.
type Options struct {
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Version string
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, dash Dashboard, opts Options) *Server {
	s := &Server{
		cfg:     cfg,
		dash:    dash,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		version: opts.Version,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = logging.Component(s.logger, "api")
	if s.version == "" {
		s.version = "dev"
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully on
// SIGINT/SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-done:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	if s.metrics != nil && s.cfg.Metrics.Enabled {
		r.Method(http.MethodGet, s.cfg.Metrics.Path, s.metrics.Handler())
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/sections", s.handleSections)
		r.Get("/series", s.handleSeries)
		r.Get("/delivery", s.handleDelivery)
		r.Get("/products", s.handleProducts)
		r.Get("/products/periods", s.handleProductPeriods)
		r.Get("/profit-bands", s.handleProfitBands)

		r.Get("/config", s.handleGetConfig)
		r.Get("/config/endpoint", s.handleGetEndpoint)
	})

	return r
}

// instrument logs every request and records it in metrics under its route
// pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		s.logger.Info("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"durationMs", elapsed.Milliseconds(),
			"requestId", middleware.GetReqID(r.Context()),
		)
		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(r.Method, route, status, elapsed)
		}
	})
}

// APIResponse is the standard envelope for every endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
