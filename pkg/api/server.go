// Package api odbconv REST API
//
// @title           odbconv REST API
// @version         1.0.0
// @description     Converts transaction CSV to and from ODB containers.
// @host            localhost:9280
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ssargent/odbconv/pkg/metrics"
)

const (
	defaultMaxBodyBytes    = 16 << 20
	defaultShutdownTimeout = 10 * time.Second
)

// Server holds the API server state
type Server struct {
	deps   Dependencies
	config ServerConfig
}

// NewServer creates a new API server
func NewServer(deps Dependencies, config ServerConfig) *Server {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaultMaxBodyBytes
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaultShutdownTimeout
	}
	if len(config.CORSOrigins) == 0 {
		config.CORSOrigins = []string{"*"}
	}
	return &Server{deps: deps, config: config}
}

// Router builds the HTTP handler with all routes configured
func (s *Server) Router() http.Handler {
	m := s.deps.Metrics

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{HeaderRunID, HeaderRecordsKept, HeaderRecordsDropped},
		MaxAge:         300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(m.Gatherer(), promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(s.config.APIKey))

		// Health check
		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		// Conversions
		r.Post("/encode", m.InstrumentHandler("POST", "/api/v1/encode", s.handleEncode))
		r.Post("/decode", m.InstrumentHandler("POST", "/api/v1/decode", s.handleDecode))

		// Run archive
		r.Get("/runs", m.InstrumentHandler("GET", "/api/v1/runs", s.handleListRuns))
		r.Get("/runs/{id}", m.InstrumentHandler("GET", "/api/v1/runs/{id}", s.handleGetRun))
	})

	return r
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Bind, strconv.Itoa(s.config.Port))
}

// Serve accepts connections on l until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.deps.Logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return nil
}

// StartServer listens on the configured address and serves until ctx is
// cancelled.
func StartServer(ctx context.Context, deps Dependencies, config ServerConfig) error {
	server := NewServer(deps, config)

	l, err := net.Listen("tcp", server.Addr())
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", server.Addr())
	}

	deps.Logger.Info().
		Str("addr", l.Addr().String()).
		Str("metrics", fmt.Sprintf("http://%s/metrics", l.Addr())).
		Bool("auth", config.APIKey != "").
		Msg("starting odbconv REST API server")

	return server.Serve(ctx, l)
}
