package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/data/mongo"
	"github.com/wallet-ledger/internal/data/postgres"
	"github.com/wallet-ledger/internal/ledger_projector/consumer"
	"github.com/wallet-ledger/internal/ledger_projector/outbox_poller"
	"github.com/wallet-ledger/internal/logger"
	"github.com/wallet-ledger/internal/platform/messaging/consumers"
	"github.com/wallet-ledger/internal/platform/messaging/producers"
	"github.com/wallet-ledger/internal/platform/persistence"
)

const shutdownTimeout = 30 * time.Second

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("ledger_projector")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting Ledger Projector",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

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

	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	passbookRepo := mongo.NewPassbookRepository(log, mongoDB.Database())
	if err := passbookRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to prepare passbook indexes", "error", err)
		os.Exit(1)
	}

	ledgerProducer, err := producers.NewLedgerEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize ledger event producer", "error", err)
		os.Exit(1)
	}

	// nil when no DLQ topic is configured
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	ledgerPublisher := outbox_poller.NewLedgerPublisher(outboxRepo, ledgerProducer, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, ledgerPublisher, log)
	passbookHandler := consumer.NewPassbookEventHandler(log, passbookRepo, dlqProducer)

	errChan := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.LedgerTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.LedgerTopic, cfg.Kafka.ConsumerGroup, passbookHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
			return
		}
		<-kafkaConsumer.Done()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

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

	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}
	if err := ledgerProducer.Close(); err != nil {
		log.Error("Error closing ledger event producer", "error", err)
	}
	if dlqProducer != nil {
		if err := dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	postgresDB.Close()

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serviceErr != nil {
		log.Error("Ledger Projector stopped with errors", "error", serviceErr)
		os.Exit(1)
	}
	log.Info("Ledger Projector stopped")
}
