// Package server provides a lightweight HTTP server that exposes the host
// property store and the runner's health as JSON.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Guliveer/fh-car-models/internal/constants"
	"github.com/Guliveer/fh-car-models/internal/logger"
	"github.com/Guliveer/fh-car-models/internal/store"
)

// StatusFunc returns the current runner status. Used to dynamically fetch
// health data on every request.
type StatusFunc func() Status

// Status is the health view of the host runner.
type Status struct {
	FeedConnected bool     `json:"feed_connected"`
	Frames        int64    `json:"frames"`
	Rejected      int64    `json:"rejected"`
	Games         []string `json:"games"`
	PropertyKey   string   `json:"property_key"`
}

// PropertyServer serves the property store and health JSON endpoints.
type PropertyServer struct {
	addr  string
	log   *logger.Logger
	srv   *http.Server
	props *store.Properties

	mu         sync.RWMutex
	statusFunc StatusFunc
}

// NewPropertyServer creates a new PropertyServer bound to the given address.
func NewPropertyServer(addr string, props *store.Properties, log *logger.Logger) *PropertyServer {
	s := &PropertyServer{
		addr:  addr,
		log:   log,
		props: props,
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           withLogging(log, s.routes()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return context.Background()
		},
	}

	return s
}

// Handler returns the server's HTTP handler.
func (s *PropertyServer) Handler() http.Handler {
	return s.srv.Handler
}

// SetStatusFunc sets the function reporting runner status. Thread-safe.
func (s *PropertyServer) SetStatusFunc(fn StatusFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusFunc = fn
}

// getStatus returns the current runner status. Thread-safe.
func (s *PropertyServer) getStatus() Status {
	s.mu.RLock()
	fn := s.statusFunc
	s.mu.RUnlock()
	if fn != nil {
		return fn()
	}
	return Status{}
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It performs graceful shutdown when the context is done.
func (s *PropertyServer) Run(ctx context.Context) error {
	s.log.Info("Property server starting", "addr", s.addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("property server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Property server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultGracefulShutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("property server shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *PropertyServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/properties", s.handleProperties)
	mux.HandleFunc("GET /api/properties/{key}", s.handleProperty)
	return mux
}

func withLogging(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		log.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration", time.Since(start).String(),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
