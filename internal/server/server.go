package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/osakka/axiosgen/pkg/config"
	"github.com/osakka/axiosgen/pkg/generator"
	"github.com/osakka/axiosgen/pkg/logging"
	"github.com/osakka/axiosgen/pkg/metrics"
	"github.com/osakka/axiosgen/pkg/openapi"
)

// Server serves code generation over HTTP
type Server struct {
	config     config.ServerConfig
	httpServer *http.Server
	router     *mux.Router
	generator  *generator.Generator
	loader     *openapi.Loader
	logger     logging.Logger
	metrics    metrics.Metrics
	registry   metrics.Metrics
}

// New creates a server. The registry backs the /metrics endpoint.
func New(cfg config.ServerConfig, logger logging.Logger, registry metrics.Metrics) *Server {
	if logger == nil {
		logger = logging.NewNoOp()
	}
	if registry == nil {
		registry = metrics.NoOp()
	}

	s := &Server{
		config:    cfg,
		generator: generator.New(logger, registry),
		loader:    openapi.NewLoader(logger, openapi.DefaultLoaderConfig()),
		logger:    logger.WithComponent("http_server"),
		metrics:   registry.WithPrefix("http"),
		registry:  registry,
	}
	s.setupHTTPServer()
	return s
}

func (s *Server) setupHTTPServer() {
	s.router = mux.NewRouter()

	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(s.bodyLimitMiddleware)

	api := s.router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
	api.HandleFunc("/validate", s.handleValidate).Methods(http.MethodPost)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until ctx is cancelled or the listener fails
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("http_server_starting", "address", s.httpServer.Addr)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("http_server_stopping", "reason", "context_cancelled")
		return s.Stop()
	case err := <-errChan:
		s.logger.Error("http_server_error", "error", err)
		return err
	}
}

// Stop gracefully shuts the server down
func (s *Server) Stop() error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("http_server_shutdown_error", "error", err)
		return err
	}

	s.logger.Info("http_server_shutdown_complete")
	return nil
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic_recovered",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path)
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{Message: "internal server error"}})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http_request_completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.metrics.Observe("request_duration_ms", float64(time.Since(start).Milliseconds()),
			"method", r.Method,
			"path", r.URL.Path)
		s.metrics.Inc("requests_total",
			"method", r.Method,
			"path", r.URL.Path)
	})
}

func (s *Server) bodyLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.MaxBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}
