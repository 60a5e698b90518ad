package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mfairley/apiguard/internal/logging"
	"github.com/mfairley/apiguard/internal/metrics"
	"github.com/mfairley/apiguard/internal/ratelimit"
)

// Options wires the pipeline's collaborators. Auth and validation middlewares
// are mounted per-route by the caller; everything here applies to every
// request.
type Options struct {
	Port           int
	RequestTimeout time.Duration
	Logger         *slog.Logger
	RequestLogger  *logging.RequestLogger
	Metrics        *metrics.Registry
	Limiter        *ratelimit.Limiter
	// RateLimitKey overrides client-IP keying; see KeyFunc.
	RateLimitKey KeyFunc
}

type Server struct {
	Router *chi.Mux

	logger *slog.Logger
	http   *http.Server
}

// New assembles the middleware pipeline in declared order: request ID, real
// client IP, request logging with metrics, panic recovery (the terminal
// error stage), rate limiting, request timeout, then tracing.
func New(opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(chimiddleware.RealIP)
	if opts.RequestLogger != nil || opts.Metrics != nil {
		r.Use(LoggingMiddleware(opts.RequestLogger, opts.Metrics))
	}
	r.Use(RecoverMiddleware(opts.RequestLogger))
	if opts.Limiter != nil {
		r.Use(RateLimitMiddleware(opts.Limiter, opts.RateLimitKey))
	}
	r.Use(TimeoutMiddleware(opts.RequestTimeout))
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "apiguard")
	})

	return &Server{
		Router: r,
		logger: opts.Logger,
		http: &http.Server{
			Addr:    fmt.Sprintf(":%d", opts.Port),
			Handler: r,
		},
	}
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	if s.logger != nil {
		s.logger.Info("starting server", slog.String("addr", s.http.Addr))
	}
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
