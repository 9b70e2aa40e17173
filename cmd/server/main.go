/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the revenue engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load configuration
  2. Initialize structured logging
  3. Initialize SQLite store
  4. Create API handler and billing worker
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Optional YAML config file path
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the billing worker
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/revenue.db"

  # Run with a config file
  ./server -config=revenue.yaml

  # Override via environment
  REVENUE_PORT=3000 REVENUE_WORKER_ENABLED=false ./server

SEE ALSO:
  - config/config.go: Configuration loading and precedence
  - api/server.go: Router configuration
  - api/worker.go: Background billing worker
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/revenue-engine/api"
	"github.com/warp/revenue-engine/config"
	"github.com/warp/revenue-engine/store/sqlite"
)

func main() {
	// Flags override the config file and environment.
	configPath := flag.String("config", "", "YAML config file path")
	port := flag.Int("port", 0, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	// Initialize handler and billing worker
	handler := api.NewHandler(store, logger)

	worker := api.NewBillingWorker(store, handler, logger)
	worker.Enabled = cfg.Worker.Enabled
	worker.Interval = cfg.Worker.Interval
	worker.BatchSize = cfg.Worker.BatchSize
	worker.Start()
	defer worker.Stop()

	// Create router
	router := api.NewRouter(handler, worker, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", fmt.Sprintf("http://localhost:%d", cfg.Port)),
			zap.String("db", cfg.DBPath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
