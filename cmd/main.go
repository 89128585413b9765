package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "cnc_dashboard/docs"
	"cnc_dashboard/internal/backend"
	"cnc_dashboard/internal/config"
	"cnc_dashboard/internal/handlers"
	"cnc_dashboard/internal/logger"
	"cnc_dashboard/internal/metrics"
	"cnc_dashboard/internal/server"
	"cnc_dashboard/internal/service"
	"cnc_dashboard/internal/view"
)

const shutdownTimeout = 10 * time.Second

// @title        CNC Job Dashboard API
// @version      1.0
// @description  Session-scoped dashboard actions over the CNC job backend.
// @BasePath     /
func main() {
	// load config.yml
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	m := metrics.New()

	// wire dependencies
	client, err := newBackendClient(cfg, log, m)
	if err != nil {
		log.Fatalw("failed to init backend client", "err", err)
	}
	renderer, err := view.New()
	if err != nil {
		log.Fatalw("failed to parse templates", "err", err)
	}

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, sessions := service.NewService(ctx, service.Deps{
		Backend:  client,
		History:  client,
		Renderer: renderer,
	}, service.Options{
		RefreshInterval: cfg.Dashboard.RefreshInterval,
		NotificationTTL: cfg.Dashboard.NotificationTTL,
		IdleTTL:         cfg.Session.IdleTTL,
		Log:             log,
		Metrics:         m,
	})

	// evict abandoned pages
	go sessions.RunJanitor(ctx, cfg.Session.SweepInterval)

	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		Pages:           renderer,
		Metrics:         m,
		RefreshInterval: cfg.Dashboard.RefreshInterval,
	})

	// start HTTP server
	srv := server.New(server.Timeouts{
		ReadHeader: cfg.Server.ReadHeaderTimeout,
		Write:      cfg.Server.WriteTimeout,
		Idle:       cfg.Server.IdleTimeout,
	})
	runHTTPServer(srv, cfg.Port, apiHandler, log)
	log.Infow("dashboard started", "port", cfg.Port, "backend", cfg.Backend.BaseURL)

	// graceful shutdown
	waitForShutdown(cancel, srv, sessions, log)
}

func newBackendClient(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*backend.Client, error) {
	return backend.NewClient(backend.Options{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
		Breaker: backend.BreakerSettings{
			Name:             "backend",
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		},
		Log:     log,
		Metrics: m,
	})
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, sessions *service.SessionStore, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop refresh loops and the janitor
	cancel()
	sessions.CloseAll()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
