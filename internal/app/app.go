// Package app wires together all dependencies and runs the storefront
// session service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/czy882/sanitary-pads-shop/internal/backend"
	"github.com/czy882/sanitary-pads-shop/internal/config"
	handler "github.com/czy882/sanitary-pads-shop/internal/handler/http"
	"github.com/czy882/sanitary-pads-shop/internal/service"
	"github.com/czy882/sanitary-pads-shop/internal/token"
	"github.com/czy882/sanitary-pads-shop/pkg/health"
	"github.com/czy882/sanitary-pads-shop/pkg/httpclient"
	"github.com/czy882/sanitary-pads-shop/pkg/middleware"
	"github.com/czy882/sanitary-pads-shop/pkg/tracing"
)

// App wires together all dependencies and runs the service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	store          *service.SessionStore
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Backend HTTP client, optionally wrapped in a circuit breaker.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.BackendTimeout
	clientCfg.MaxRetries = cfg.BackendMaxRetries
	baseClient := httpclient.New(clientCfg)

	var doer backend.Doer = baseClient
	if cfg.CircuitBreakerOn {
		cbCfg := httpclient.DefaultCircuitBreakerConfig("cart-backend")
		doer = httpclient.NewCircuitBreakerClient(baseClient, cbCfg, logger)
	}

	// Build the dependency graph.
	tokens := token.NewStore(cfg.SessionToken)
	backendClient := backend.NewClient(doer, backend.Config{
		CartBaseURL:  cfg.CartAPIBaseURL,
		StoreBaseURL: cfg.StoreAPIBaseURL,
	}, tokens, logger)
	store := service.NewSessionStore(backendClient, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("cart-backend", func(ctx context.Context) error {
		return backendClient.Ping(ctx)
	})

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.CORSAllowedOrigins
	corsConfig.Environment = cfg.Environment

	router := handler.NewRouter(store, backendClient, tokens, healthHandler, logger, corsConfig)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		store:          store,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled. The
// initial cart load happens in the background: the server must come up even
// when the backend is down, surfacing the failure through the view instead.
func (a *App) Run(ctx context.Context) error {
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if _, err := a.store.Refresh(loadCtx); err != nil {
			a.logger.Warn("initial cart load failed",
				slog.String("error", err.Error()),
			)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: the HTTP server drains in-flight
// requests first, then the tracer flushes any spans those requests produced.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
