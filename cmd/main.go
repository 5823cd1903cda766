package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angeloszaimis/devboard/config"
	"github.com/angeloszaimis/devboard/internal/devs"
	"github.com/angeloszaimis/devboard/internal/handler"
	"github.com/angeloszaimis/devboard/internal/healthcheck"
	"github.com/angeloszaimis/devboard/internal/httpserver"
	"github.com/angeloszaimis/devboard/internal/metrics"
	"github.com/angeloszaimis/devboard/internal/render"
	"github.com/angeloszaimis/devboard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m := metrics.New(cfg.Metrics.Namespace)

	fetcher, err := devs.NewFetcher(log, cfg.Database, devs.WithObserver(m))
	if err != nil {
		log.Error("Failed to create fetcher", slog.Any("err", err))
		os.Exit(1)
	}

	renderer, err := render.New(cfg.Page.Title)
	if err != nil {
		log.Error("Failed to load page template", slog.Any("err", err))
		os.Exit(1)
	}

	page := handler.NewPageHandler(log, fetcher, renderer, cfg.Page.OnError)

	srv, err := httpserver.New(cfg.Server, setupRouter(page, m, cfg.Metrics.Path))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	if _, err := startProbe(ctx, cfg.HealthCheck, fetcher, m, log); err != nil {
		log.Error("Failed to start database probe",
			slog.String("interval", cfg.HealthCheck.Interval),
			slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Listening",
		slog.String("addr", cfg.Server.Address),
		slog.String("db_host", cfg.Database.Host),
		slog.String("db_name", cfg.Database.Name),
		slog.String("metrics", cfg.Metrics.Path))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting server", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// startProbe launches the database probe unless the interval is zero. It
// reports whether a probe was started.
func startProbe(
	ctx context.Context,
	cfg config.HealthCheckConfig,
	pinger healthcheck.Pinger,
	reporter healthcheck.Reporter,
	log *slog.Logger,
) (bool, error) {
	interval, err := time.ParseDuration(cfg.Interval)
	if err != nil {
		return false, err
	}

	if interval <= 0 {
		log.Info("Database probe disabled")
		return false, nil
	}

	go healthcheck.Run(ctx, pinger, interval, reporter, log)
	return true, nil
}
