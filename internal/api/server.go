package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/FairForge/nfstraffic/internal/health"
	"github.com/FairForge/nfstraffic/internal/metrics"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// HealthReporter produces the report served on /health.
type HealthReporter interface {
	Check(ctx context.Context) *health.Report
}

type Server struct {
	port       int
	logger     *zap.Logger
	router     *mux.Router
	httpServer *http.Server
	health     HealthReporter
	metrics    *metrics.Metrics
	ready      func() bool
	version    string
	startTime  time.Time
}

// Option configures the server
type Option func(*Server)

// WithHealth serves reports from h on /health
func WithHealth(h HealthReporter) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithMetrics serves m on /metrics and records request metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithReadiness sets the function backing /ready
func WithReadiness(ready func() bool) Option {
	return func(s *Server) {
		s.ready = ready
	}
}

// WithVersion sets the version reported on /version and /health
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

func NewServer(port int, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		port:      port,
		logger:    logger,
		router:    mux.NewRouter(),
		ready:     func() bool { return true },
		version:   "dev",
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/", s.handleRoot).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ready", s.handleReady).Methods("GET")
	s.router.HandleFunc("/version", s.handleVersion).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/health", http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  health.StatusHealthy,
		"version": s.version,
		"uptime":  time.Since(s.startTime).Seconds(),
	}

	code := http.StatusOK
	if s.health != nil {
		report := s.health.Check(r.Context())
		resp["status"] = report.Status
		resp["checks"] = report.Checks
		if len(report.Details) > 0 {
			resp["details"] = report.Details
		}
		resp["timestamp"] = report.Timestamp
		if !report.Healthy() {
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, resp)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ready := s.ready()
	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"ready":     ready,
		"memory_mb": getMemoryUsageMB(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": s.version,
		"go":      runtime.Version(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.Int("port", s.port))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func getMemoryUsageMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc / 1024 / 1024
}
