// Package server implements the masonry layout service.
//
// The service exposes the layout pipeline over HTTP: clients POST a feed
// and viewport parameters and get back a materialized column set, with
// optional persistence of named layouts when a store is configured.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/masonry/pkg/pipeline"
	"github.com/matzehuels/masonry/pkg/store"
)

// Timeouts for the HTTP server.
const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	shutdownTimeout = 10 * time.Second

	// maxBodyBytes caps request bodies; feeds are metadata, not images.
	maxBodyBytes = 4 << 20
)

// Server is the layout service.
type Server struct {
	runner *pipeline.Runner
	store  store.Store // nil disables the /v1/layouts endpoints
	logger *log.Logger
	http   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables the persistence endpoints.
func WithStore(s store.Store) Option {
	return func(srv *Server) { srv.store = s }
}

// WithLogger sets the structured logger.
func WithLogger(l *log.Logger) Option {
	return func(srv *Server) { srv.logger = l }
}

// New creates a server around a pipeline runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	srv := &Server{
		runner: runner,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)

		if s.store != nil {
			r.Route("/layouts", func(r chi.Router) {
				r.Get("/", s.handleListLayouts)
				r.Post("/", s.handleSaveLayout)
				r.Get("/{id}", s.handleGetLayout)
				r.Delete("/{id}", s.handleDeleteLayout)
			})
		}
	})

	return r
}

// ListenAndServe runs the server until the context is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("layout service listening", "addr", addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down layout service")
		return s.http.Shutdown(shutdownCtx)
	}
}
