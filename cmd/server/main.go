package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "billing-engine/internal/adapters/web"
	"billing-engine/internal/app"
	"billing-engine/internal/config"
	"billing-engine/internal/logger"
	"billing-engine/internal/scheduler"
	"billing-engine/internal/store"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatal().Err(err).Msg("logger")
	}
	serverLog := logger.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeStore, err := store.Open(ctx, cfg, logger.WithComponent("store"))
	if err != nil {
		serverLog.Fatal().Err(err).Msg("store")
	}
	defer closeStore()

	svc := app.New(backend, cfg)
	if err := svc.Health(ctx); err != nil {
		serverLog.Fatal().Err(err).Msg("store health check")
	}

	if cfg.ReportSchedule != "" {
		sched := scheduler.New(svc, logger.WithComponent("scheduler"))
		if err := sched.AddBalanceDigest(cfg.ReportSchedule); err != nil {
			serverLog.Fatal().Err(err).Msg("scheduler")
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           webAdapter.NewHandler(svc, cfg.AllowedOrigins, logger.WithComponent("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			serverLog.Error().Err(err).Msg("shutdown")
		}
	}()

	serverLog.Info().Str("port", cfg.ServerPort).Str("driver", cfg.StoreDriver).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		serverLog.Fatal().Err(err).Msg("server")
	}
	<-idle
	serverLog.Info().Msg("server stopped")
}
