package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ambulance-dispatch-service/internal/adapters/cache"
	"ambulance-dispatch-service/internal/adapters/facilitystate"
	"ambulance-dispatch-service/internal/adapters/publish"
	"ambulance-dispatch-service/internal/adapters/repositories"
	"ambulance-dispatch-service/internal/adapters/routing"
	"ambulance-dispatch-service/internal/api"
	"ambulance-dispatch-service/internal/config"
	"ambulance-dispatch-service/internal/platform/db"
	"ambulance-dispatch-service/internal/platform/logger"
	"ambulance-dispatch-service/internal/platform/obs"
	"ambulance-dispatch-service/internal/ports"
	"ambulance-dispatch-service/internal/services"

	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (SQL fleet, routing providers, Redis) behind ports,
// starts the dispatcher loop and serves the HTTP API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.AppEnv == "development")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs.RegisterDefault()

	conn, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(ctx, conn, cfg.SeedPath); err != nil {
		log.Fatal("init database", zap.Error(err))
	}

	repo := repositories.NewSQLFleetRepository(conn, log)
	facilities, err := repo.ListFacilities(ctx)
	if err != nil {
		log.Fatal("load facilities", zap.Error(err))
	}
	units, err := repo.ListUnits(ctx)
	if err != nil {
		log.Fatal("load units", zap.Error(err))
	}
	log.Info("fleet loaded", zap.Int("facilities", len(facilities)), zap.Int("units", len(units)))

	providers, err := routing.NewProvidersFromConfig(cfg.Routing, log)
	if err != nil {
		log.Fatal("routing providers", zap.Error(err))
	}
	chain := routing.NewProviderChain(log, providers...)
	log.Info("routing chain ready", zap.Strings("providers", chain.Providers()))

	routeCache, err := cache.New(cache.Options{
		Size:      cfg.Cache.Size,
		TTL:       cfg.Cache.TTL,
		Precision: cfg.Cache.Precision,
	})
	if err != nil {
		log.Fatal("route cache", zap.Error(err))
	}

	engine := services.NewEngine(chain, routeCache, services.NewCostModel(nil), services.EngineConfig{
		Workers:          cfg.Dispatch.Workers,
		FallbackSpeedKmh: cfg.Dispatch.FallbackSpeedKmh,
		DurationSource:   cfg.Dispatch.DurationSource,
		RelaxExclusivity: cfg.Dispatch.RelaxExclusivity,
	}, log)

	publisher, closePublisher := newPublisher(ctx, cfg.RedisURL, log)
	defer closePublisher()

	dispatcher := services.NewDispatcher(engine, units, facilities, services.DispatcherOptions{
		Refresher: facilitystate.NewRandom(nil),
		Publisher: publisher,
		Interval:  cfg.Dispatch.CycleInterval,
		Logger:    log,
	})
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// Timeouts are tuned for cold-cache cycles (external routing latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(dispatcher, chain, routeCache, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown", zap.Error(err))
		}
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if seedPath == "" {
		return nil
	}
	if err := repositories.SeedFromYAML(ctx, conn, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

// newPublisher returns the Redis publisher when a URL is configured and
// reachable, otherwise the log publisher.
func newPublisher(ctx context.Context, redisURL string, log *zap.Logger) (ports.DispatchPublisher, func()) {
	if redisURL == "" {
		return publish.NewLogPublisher(log), func() {}
	}

	p, err := publish.NewRedisPublisher(redisURL)
	if err == nil {
		err = p.Ping(ctx)
	}
	if err != nil {
		log.Warn("redis unavailable, publishing to log", zap.Error(err))
		if p != nil {
			_ = p.Close()
		}
		return publish.NewLogPublisher(log), func() {}
	}

	return p, func() { _ = p.Close() }
}
