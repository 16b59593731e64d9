// Package server exposes the planner over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fol-planner/artifacts"
	"github.com/theoremus-urban-solutions/transit-fol-planner/graph"
	"github.com/theoremus-urban-solutions/transit-fol-planner/internal"
	"github.com/theoremus-urban-solutions/transit-fol-planner/planner"
)

// Planner is the planning surface the handlers need.
type Planner interface {
	Plan(ctx context.Context, req planner.Request) (*planner.TripResult, error)
	Stops() ([]graph.Stop, error)
	Routes() ([]graph.Route, error)
	Graph() (*graph.Graph, error)
}

// ArtifactReader lists and reads persisted engine artifacts.
type ArtifactReader interface {
	List(ctx context.Context, limit int) ([]artifacts.Entry, error)
	Open(ctx context.Context, name string) ([]byte, error)
}

// Options configures the listener and CORS.
type Options struct {
	Port           int
	AllowedOrigins []string
}

// Server serves the planning API.
type Server struct {
	planner   Planner
	artifacts ArtifactReader
	metrics   *internal.Metrics
	logger    *zap.Logger
	validate  *validator.Validate
	opts      Options
	started   time.Time
}

// New builds a server. artifacts and metrics may be nil.
func New(p Planner, a ArtifactReader, opts Options, logger *zap.Logger, metrics *internal.Metrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		planner:   p,
		artifacts: a,
		metrics:   metrics,
		logger:    logger,
		validate:  validator.New(),
		opts:      opts,
		started:   time.Now(),
	}
}

// Router returns the HTTP handler with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/plan", s.handlePlan)
		r.Get("/stops", s.handleStops)
		r.Get("/routes", s.handleRoutes)
		r.Get("/artifacts", s.handleArtifacts)
		r.Get("/artifacts/{name}", s.handleArtifact)
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// plans wait for the engines
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server shut down successfully")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		s.metrics.ObserveHTTP(r.Method, route, ww.Status())
		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestID", middleware.GetReqID(r.Context())),
		)
	})
}
