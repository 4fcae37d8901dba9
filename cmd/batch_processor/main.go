package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/deducta-loan-ledger/internal/batch_processor/components"
	"github.com/deducta-loan-ledger/internal/batch_processor/consumer"
	"github.com/deducta-loan-ledger/internal/batch_processor/report_mailer"
	"github.com/deducta-loan-ledger/internal/batch_processor/service"
	"github.com/deducta-loan-ledger/internal/config"
	"github.com/deducta-loan-ledger/internal/data/mongo"
	"github.com/deducta-loan-ledger/internal/data/postgres"
	"github.com/deducta-loan-ledger/internal/logger"
	"github.com/deducta-loan-ledger/internal/platform/messaging/consumers"
	"github.com/deducta-loan-ledger/internal/platform/messaging/producers"
	"github.com/deducta-loan-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("batch_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Batch Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	customerRepo := postgres.NewCustomerRepository(log, postgresDB)
	loanRepo := postgres.NewLoanRepository(log, postgresDB)
	repaymentRepo := postgres.NewRepaymentRepository(log, postgresDB)
	batchRepo := postgres.NewBatchRepository(log, postgresDB)
	settingsStore := postgres.NewSettingsRepository(log, postgresDB)
	reportRepo := mongo.NewReportRepository(log, mongoDB.Database())
	fileStore := mongo.NewFileStore(log, mongoDB.Database())

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer might be nil if DLQTopic is not configured. Handler should be nil-safe.

	// Initialize ingestion service with separated concerns
	ingestionService := components.CreateIngestionService(
		postgresDB,
		loanRepo,
		customerRepo,
		repaymentRepo,
		batchRepo,
		reportRepo,
		settingsStore,
		fileStore,
		log,
		cfg,
	)

	// Initialize batch event handler
	batchEventHandler := consumer.NewBatchEventHandler(
		log,
		ingestionService,
		dlqProducer,
	)

	// Initialize report mailer
	notifier := report_mailer.NewSMTPNotifier(&cfg.SMTP, log)
	mailer := report_mailer.NewMailer(
		&cfg.Reports,
		reportRepo,
		notifier,
		log,
	)

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.BatchTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.BatchTopic, cfg.Kafka.ConsumerGroup, batchEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Start report mailer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Report Mailer",
			"interval", cfg.Reports.PollingInterval.String(),
			"batch_size", cfg.Reports.BatchSize,
		)
		mailer.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shutdown the worker pool if it's a WorkerPoolIngestionService
	if wpService, ok := ingestionService.(*service.WorkerPoolIngestionService); ok {
		log.Info("Shutting down worker pool", "running_workers", wpService.Running())
		wpService.Shutdown()
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close DLQ Kafka producer
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	// Close Kafka consumer
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Batch Processor shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Batch Processor shutdown completed with errors")
	} else {
		log.Info("Batch Processor shutdown completed successfully")
	}
}
