// Package server exposes the aggregation engine as a read-only JSON API.
// Every request reads the same immutable snapshot, so handlers take no locks.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/analysis"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/observability"
)

// Config holds configuration for the query server.
type Config struct {
	Addr            string
	Engine          *analysis.Engine
	SnapshotID      uuid.UUID
	Metrics         *observability.Metrics
	Logger          *slog.Logger
	ShutdownTimeout time.Duration
}

// Server serves one loaded snapshot.
type Server struct {
	addr     string
	engine   *analysis.Engine
	snapshot uuid.UUID
	metrics  *observability.Metrics
	logger   *slog.Logger
	shutdown time.Duration
	handler  http.Handler
}

// New creates a server and its routes.
func New(cfg Config) *Server {
	s := &Server{
		addr:     cfg.Addr,
		engine:   cfg.Engine,
		snapshot: cfg.SnapshotID,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		shutdown: cfg.ShutdownTimeout,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetricsForTesting()
	}
	if s.shutdown <= 0 {
		s.shutdown = 10 * time.Second
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.instrument,
		s.snapshotHeader,
	)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/groups", s.handleGroups)
		r.Get("/groups/{group}/summary", s.handleGroupSummary)
		r.Get("/groups/{group}/report", s.handleGroupReport)
		r.Get("/groups/{group}/top", s.handleRank)
		r.Get("/groups/{group}/combinations", s.handleCombinations)
		r.Get("/summary", s.handleSummary)
		r.Get("/totals", s.handleTotals)
		r.Get("/totals/{metric}", s.handleTotal)
		r.Get("/compare", s.handleCompare)
		r.Get("/metros/{id}", s.handleMetro)
	})
	return r
}

// Serve starts the server and blocks until ctx is cancelled, then drains
// connections within the shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	eg.Go(func() error {
		s.logger.Info("http server starting", "addr", s.addr, "snapshot", s.snapshot.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()
		s.logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) snapshotHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Snapshot-ID", s.snapshot.String())
		next.ServeHTTP(w, r)
	})
}
