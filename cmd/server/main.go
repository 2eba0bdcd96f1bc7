package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/McBride-Ryan/websocket-hss/internal/config"
	"github.com/McBride-Ryan/websocket-hss/internal/data/postgres"
	"github.com/McBride-Ryan/websocket-hss/internal/feed"
	"github.com/McBride-Ryan/websocket-hss/internal/logger"
	"github.com/McBride-Ryan/websocket-hss/internal/notifier"
	"github.com/McBride-Ryan/websocket-hss/internal/notifier/kafkabroker"
	"github.com/McBride-Ryan/websocket-hss/internal/notifier/memory"
	"github.com/McBride-Ryan/websocket-hss/internal/platform/persistence"
	"github.com/McBride-Ryan/websocket-hss/internal/producer"
	"github.com/McBride-Ryan/websocket-hss/internal/server"
	"github.com/McBride-Ryan/websocket-hss/internal/server/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize the notifier transport
	var n notifier.Notifier
	switch cfg.Notifier.Transport {
	case config.TransportKafka:
		n, err = kafkabroker.NewBroker(appCtx, log, &cfg.Kafka, cfg.Notifier.Topic)
	default:
		n, err = memory.NewBroker(log, memory.Config{
			Workers: cfg.Fanout.Workers,
			Buffer:  cfg.Fanout.Buffer,
		})
	}
	if err != nil {
		log.Error("Failed to initialize notifier", "transport", cfg.Notifier.Transport, "error", err)
		os.Exit(1)
	}
	log.Info("Notifier initialized", "transport", cfg.Notifier.Transport, "topic", cfg.Notifier.Topic)

	// Initialize repository and services
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	transactionService := service.NewTransactionService(log, transactionRepo, n, cfg.Notifier.Topic, cfg.Feed.Limit)

	// Initialize the server-held feed: hydrate from the store, then follow
	// creation events.
	transactionFeed := feed.New(log, transactionRepo, n, cfg.Notifier.Topic, cfg.Feed.Limit)
	if err := transactionFeed.Hydrate(appCtx); err != nil {
		log.Error("Failed to hydrate feed", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := transactionFeed.Run(appCtx); err != nil {
			log.Error("Feed subscription ended with error", "error", err)
		}
	}()

	// Start the periodic transaction generator
	generator := producer.NewGenerator(log, &cfg.Producer, transactionRepo, n, cfg.Notifier.Topic)
	go generator.Run(appCtx)

	// Initialize REST server
	srv := server.NewServer(log, cfg, transactionService, transactionFeed, n)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context; stops the generator and the feed loop
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so open sockets and streams drain
	if err = srv.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = n.Close(); err != nil {
		log.Error("Error closing notifier", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
