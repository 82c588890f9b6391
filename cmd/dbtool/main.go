package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ambulance-dispatch-service/internal/adapters/repositories"
	"ambulance-dispatch-service/internal/config"
	"ambulance-dispatch-service/internal/platform/db"
	"ambulance-dispatch-service/internal/platform/logger"

	"go.uber.org/zap"
)

// dbtool initializes the fleet schema and seeds it from a YAML file.
//
//	dbtool [-init-only] [-seed path]
func main() {
	initOnly := flag.Bool("init-only", false, "create tables without seeding")
	seedFlag := flag.String("seed", "", "fleet YAML file (defaults to SEED_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.AppEnv == "development")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	conn, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	ctx := context.Background()

	log.Info("initializing database schema", zap.String("driver", cfg.DatabaseDriver))
	if err := repositories.InitSchema(ctx, conn); err != nil {
		log.Fatal("schema initialization failed", zap.Error(err))
	}
	log.Info("schema ready")

	if *initOnly {
		return
	}

	seedPath := *seedFlag
	if seedPath == "" {
		seedPath = cfg.SeedPath
	}

	log.Info("seeding database", zap.String("seed", seedPath))
	if err := repositories.SeedFromYAML(ctx, conn, seedPath); err != nil {
		log.Fatal("seeding failed", zap.Error(err))
	}
	log.Info("seeding complete")
}
