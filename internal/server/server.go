// AngelaMos | 2026
// server.go

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/carterperez-dev/medassist/internal/config"
)

// HealthHandler is told when the server stops taking traffic.
type HealthHandler interface {
	SetReady(ready bool)
	SetShutdown(shutdown bool)
}

type Config struct {
	ServerConfig  config.ServerConfig
	HealthHandler HealthHandler
	Logger        *slog.Logger
}

type Server struct {
	http   *http.Server
	router *chi.Mux
	health HealthHandler
	logger *slog.Logger
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()

	s := &Server{
		router: router,
		health: cfg.HealthHandler,
		logger: logger,
	}

	s.http = &http.Server{
		Addr: cfg.ServerConfig.Address(),
		Handler: otelhttp.NewHandler(router, "http.server",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:       cfg.ServerConfig.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.ServerConfig.WriteTimeout,
		IdleTimeout:       cfg.ServerConfig.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return s
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start blocks until the server stops. A graceful shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)

	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown flips readiness off, waits drainDelay for load balancers to stop
// routing here and then drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context, drainDelay time.Duration) error {
	if s.health != nil {
		s.health.SetReady(false)
	}

	if drainDelay > 0 {
		s.logger.Info("draining before shutdown", "delay", drainDelay)
		select {
		case <-time.After(drainDelay):
		case <-ctx.Done():
		}
	}

	if s.health != nil {
		s.health.SetShutdown(true)
	}

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}
