/*
Red Viva backend entry point.

Boot order: configuration, logger, operational clock, SQLite store, metrics,
HTTP server, scheduler. Shutdown drains in-flight requests before closing
the database.
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redviva/quota-engine/api"
	"github.com/redviva/quota-engine/config"
	"github.com/redviva/quota-engine/logger"
	"github.com/redviva/quota-engine/quota"
	"github.com/redviva/quota-engine/scheduler"
	"github.com/redviva/quota-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	log.Info().Str("tz", cfg.Timezone).Int("port", cfg.Port).Msg("starting")

	clock, err := quota.NewClock(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.Timezone).Msg("invalid timezone")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("cannot create data directory")
	}
	store, err := sqlite.New(cfg.DatabasePath, clock.Location())
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("cannot open database")
	}
	defer store.Close()

	metrics := api.NewMetrics()
	handler := api.NewHandler(store, clock, cfg, metrics, log)
	server := api.NewServer(handler, cfg.Port, log)

	sched := scheduler.New(clock.Location(), log)
	if err := sched.AddJob(cfg.MetricsSchedule, api.NewMetricsJob(handler, log)); err != nil {
		log.Fatal().Err(err).Msg("cannot schedule metrics job")
	}
	sched.Start()
	defer sched.Stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("stopped")
}
