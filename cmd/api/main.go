package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	v1 "fueleu-ledger/compliance-backend/api/v1"
	"fueleu-ledger/compliance-backend/internal/config"
	"fueleu-ledger/compliance-backend/pkg/database"
	"fueleu-ledger/compliance-backend/pkg/logging"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	// .env is optional
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

	stores, cleanup, err := openStores(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open ledger storage", zap.Error(err))
	}
	defer cleanup()

	ledger := v1.SetupLedgerAPI(stores, cfg.Compliance, logger)
	defer ledger.Close()
	if err := ledger.Seed(context.Background(), cfg.Compliance); err != nil {
		logger.Fatal("Failed to seed reference data", zap.Error(err))
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logging.GinMiddleware(logger))

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	api := router.Group("/api")
	{
		ledger.RegisterRoutes(api)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"storage":   cfg.Database.Driver,
			"timestamp": time.Now(),
		})
	})

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr), zap.String("storage", cfg.Database.Driver))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

// openStores connects the configured ledger storage. The statement read
// model gets its own sqlx pool.
func openStores(cfg *config.Config, logger *zap.Logger) (*v1.Stores, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("Using in-memory ledger storage; data is lost on restart")
		return v1.MemoryStores(), func() {}, nil
	}

	dsn := cfg.Database.GetDatabaseURL()
	db, err := database.Open(dsn, database.Options{
		MaxOpenConns: cfg.Database.MaxConnections,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxLifetime:  cfg.Database.MaxLifetime,
		LogQueries:   cfg.Database.LogQueries,
	})
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, v1.Models()...); err != nil {
			return nil, nil, err
		}
	}

	readDB, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect statement reader: %w", err)
	}
	readDB.SetMaxOpenConns(cfg.Database.MaxIdleConns)

	logger.Info("Connected to database", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	cleanup := func() {
		readDB.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return v1.PostgresStores(db, readDB), cleanup, nil
}
