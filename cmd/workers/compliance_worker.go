package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	v1 "fueleu-ledger/compliance-backend/api/v1"
	"fueleu-ledger/compliance-backend/internal/config"
	"fueleu-ledger/compliance-backend/internal/worker"
	"fueleu-ledger/compliance-backend/pkg/database"
	"fueleu-ledger/compliance-backend/pkg/logging"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	once := flag.Int("year", 0, "recompute this year once and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Database.Driver != config.DriverPostgres {
		logger.Fatal("The recompute worker needs postgres storage", zap.String("driver", cfg.Database.Driver))
	}

	db, err := database.Open(cfg.Database.GetDatabaseURL(), database.Options{
		MaxOpenConns: cfg.Worker.Concurrency + 1,
		MaxIdleConns: cfg.Worker.Concurrency,
		MaxLifetime:  cfg.Database.MaxLifetime,
		LogQueries:   cfg.Database.LogQueries,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	ledger := v1.SetupLedgerAPI(v1.PostgresStores(db, nil), cfg.Compliance, logger)
	defer ledger.Close()
	recomputer := worker.NewRecomputer(ledger.Routes, ledger.Compliance, cfg.Worker, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once != 0 {
		if _, err := recomputer.RunOnce(ctx, *once); err != nil {
			logger.Fatal("Recompute failed", zap.Error(err))
		}
		return
	}

	if err := recomputer.Start(ctx); err != nil {
		logger.Fatal("Failed to start worker", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutdown signal received")

	cancel()
	recomputer.Stop()
	logger.Info("Compliance worker stopped")
}
