// Package api exposes the resolver over HTTP for the address-registration, checkout and
// map-search front ends.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/locus/internal/resolver"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires the HTTP routes to a resolver registry.
type Server struct {
	log      *slog.Logger
	registry *resolver.Registry
	gatherer prometheus.Gatherer
	db       Pinger // nil when the backfill is disabled
}

// NewServer creates a Server. db may be nil.
func NewServer(log *slog.Logger, registry *resolver.Registry, gatherer prometheus.Gatherer, db Pinger) *Server {
	return &Server{log: log, registry: registry, gatherer: gatherer, db: db}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	v1 := router.Group("/v1")
	v1.GET("/resolve", s.resolve)
	v1.GET("/postal-codes/:cep", s.resolvePostalCode)
	v1.GET("/search", s.search)

	router.GET("/healthz", s.healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	return router
}

// Run serves the API on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	readTimeout := 5 * time.Second
	writeTimeout := time.Minute
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting HTTP server", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	s.log.InfoContext(ctx, "Shutting down HTTP server")

	return server.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.DebugContext(c.Request.Context(), "HTTP request served",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) healthz(c *gin.Context) {
	if s.db != nil {
		if err := s.db.Ping(c.Request.Context()); err != nil {
			s.log.WarnContext(c.Request.Context(), "Health check failed", "error", err)
			c.String(http.StatusServiceUnavailable, "DB ping failed")
			return
		}
	}

	c.String(http.StatusOK, "OK")
}
