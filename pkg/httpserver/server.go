package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/predmarkets/arbwatch/internal/arb"
	"github.com/predmarkets/arbwatch/pkg/healthprobe"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// OpportunitySource serves read-only views of the current arbitrage
// snapshot.
type OpportunitySource interface {
	Snapshot() []arb.Opportunity
	Top(n int) []arb.Opportunity
}

// Server exposes the inspection API: liveness, readiness, the current
// opportunity snapshot, and Prometheus metrics. It never mutates state.
type Server struct {
	server        *http.Server
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	opportunities OpportunitySource
}

// Config holds server configuration.
type Config struct {
	Addr          string
	Logger        *zap.Logger
	HealthChecker *healthprobe.HealthChecker
	Opportunities OpportunitySource
}

// New creates a new HTTP server.
func New(cfg *Config) *Server {
	s := &Server{
		logger:        cfg.Logger,
		healthChecker: cfg.HealthChecker,
		opportunities: cfg.Opportunities,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observeRequests)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/arbs", s.handleArbs)
	r.Get("/ready", cfg.HealthChecker.Ready())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server. It blocks until the server stops and
// returns nil on a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")

	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// handleHealthz is the liveness probe. The bare "ok" body is part of the
// endpoint's contract.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleArbs serves the current snapshot, best first. An optional ?top=N
// query limits the response to the N best opportunities.
func (s *Server) handleArbs(w http.ResponseWriter, r *http.Request) {
	var opps []arb.Opportunity

	if topParam := r.URL.Query().Get("top"); topParam != "" {
		top, err := strconv.Atoi(topParam)
		if err != nil || top < 0 {
			writeError(w, http.StatusBadRequest, "top must be a non-negative integer")
			return
		}
		opps = s.opportunities.Top(top)
	} else {
		opps = s.opportunities.Snapshot()
	}

	// The endpoint always serves a JSON array, never null.
	if opps == nil {
		opps = []arb.Opportunity{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(opps)
	if err != nil {
		s.logger.Error("failed-to-encode-opportunities", zap.Error(err))
	}
}

// observeRequests logs each request and records the per-path counters.
func (s *Server) observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := strconv.Itoa(ww.Status())
		RequestsTotal.WithLabelValues(r.URL.Path, status).Inc()
		RequestDurationSeconds.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())

		s.logger.Debug("http-request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request-id", middleware.GetReqID(r.Context())))
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}
