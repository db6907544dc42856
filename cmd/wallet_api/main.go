package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/data/mongo"
	"github.com/wallet-ledger/internal/data/postgres"
	"github.com/wallet-ledger/internal/ledger_engine/components"
	"github.com/wallet-ledger/internal/logger"
	"github.com/wallet-ledger/internal/platform/fx"
	"github.com/wallet-ledger/internal/platform/persistence"
	"github.com/wallet-ledger/internal/wallet_api"
	"github.com/wallet-ledger/internal/wallet_api/service"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("wallet_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting Wallet API",
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

	redisClient, err := persistence.NewRedisClient(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}

	fxClient, err := fx.NewClient(log, &cfg.FX)
	if err != nil {
		log.Error("Failed to initialize FX client", "error", err)
		os.Exit(1)
	}

	repos := components.Repositories{
		Users:        postgres.NewUserRepository(log, postgresDB),
		Wallets:      postgres.NewWalletRepository(log, postgresDB),
		Entries:      postgres.NewLedgerEntryRepository(log, postgresDB),
		Transactions: postgres.NewTransactionRepository(log, postgresDB),
		Outbox:       postgres.NewOutboxRepository(log, postgresDB),
	}
	currencyRepo := postgres.NewCurrencyRepository(log, postgresDB)
	passbookRepo := mongo.NewPassbookRepository(log, mongoDB.Database())

	transferEngine, shutdownEngine := components.CreateTransferEngine(postgresDB, repos, fxClient, log, cfg)
	balanceService := components.CreateBalanceService(postgresDB, repos, fxClient, log, cfg)

	services := wallet_api.Services{
		Users:        service.NewUserService(postgresDB, repos.Users, repos.Wallets, currencyRepo, log),
		Wallets:      service.NewWalletService(repos.Users, repos.Wallets, repos.Entries, balanceService, log),
		Transactions: service.NewTransactionService(transferEngine, repos.Transactions),
		Passbook:     service.NewPassbookService(passbookRepo),
		Currencies:   service.NewCurrencyService(postgresDB, currencyRepo, log),
	}

	checks := map[string]wallet_api.HealthCheck{
		"postgres": func(ctx context.Context) error { return postgresDB.Pool().Ping(ctx) },
		"mongodb":  mongoDB.Ping,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}

	server := wallet_api.NewServer(log, cfg, services, redisClient, checks)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Drain HTTP first so no transfer starts after the pool is released
	var shutdownErr error
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownErr = err
	}

	shutdownEngine()

	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis client", "error", err)
		shutdownErr = err
	}

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
		shutdownErr = err
	}

	postgresDB.Close()

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if shutdownErr != nil {
		log.Error("Server shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Server shutdown completed successfully")
}
