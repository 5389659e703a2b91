// Package server exposes the resolution engine over HTTP.
//
// Routes:
//
//	GET  /healthz                  liveness and snapshot summary
//	GET  /v1/categories            the taxonomy as a nested tree
//	GET  /v1/categories/find?q=    look a category up by name or alias
//	GET  /v1/categories/suggest    rank categories for ?path=A&path=B
//	GET  /v1/parameters            the parameter schema
//	POST /v1/resolve               resolve a part.Raw body
//	POST /v1/lookup                search the suppliers, then resolve
//	POST /v1/reload                reload the snapshot's source files
//	GET  /metrics                  Prometheus metrics
//
// Errors are JSON objects {"code": ..., "error": ...} with a status derived
// from the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/partimport/pkg/pipeline"
	"github.com/matzehuels/partimport/pkg/supplier"
)

const (
	maxBodySize     = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Options configures a [Server]. Only Engine is required.
type Options struct {
	Engine *pipeline.Engine
	// Registry serves /v1/lookup. Without it the route answers 501.
	Registry *supplier.Registry
	// Gatherer serves /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
}

// Server is the HTTP API.
type Server struct {
	engine   *pipeline.Engine
	registry *supplier.Registry
	logger   *log.Logger
	router   chi.Router
}

// New creates a server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		engine:   opts.Engine,
		registry: opts.Registry,
		logger:   opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	r.Route("/v1", func(r chi.Router) {
		r.Get("/categories", s.handleCategories)
		r.Get("/categories/find", s.handleFind)
		r.Get("/categories/suggest", s.handleSuggest)
		r.Get("/parameters", s.handleParameters)
		r.Post("/resolve", s.handleResolve)
		r.Post("/lookup", s.handleLookup)
		r.Post("/reload", s.handleReload)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
