package wallet_api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/wallet_api/handler"
	"github.com/wallet-ledger/internal/wallet_api/middleware"
	"github.com/wallet-ledger/internal/wallet_api/service"
)

// Services are the application services the HTTP boundary exposes
type Services struct {
	Users        service.UserService
	Wallets      service.WalletService
	Transactions service.TransactionService
	Passbook     service.PassbookService
	Currencies   service.CurrencyService
}

// HealthCheck reports whether one dependency is reachable
type HealthCheck func(ctx context.Context) error

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer wires handlers, middleware and routes. checks back the /ready endpoint.
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	services Services,
	idempotencyStore redis.UniversalClient,
	checks map[string]HealthCheck,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	setupRouter(httpRouter, routerDeps{
		logger:             log,
		verifier:           middleware.NewTokenVerifier(&cfg.Auth),
		idempotency:        middleware.Idempotency(idempotencyStore, cfg.Redis.IdempotencyTTL, log),
		userHandler:        handler.NewUserHandler(log, services.Users),
		walletHandler:      handler.NewWalletHandler(log, services.Wallets),
		transactionHandler: handler.NewTransactionHandler(log, services.Transactions),
		passbookHandler:    handler.NewPassbookHandler(log, services.Passbook),
		currencyHandler:    handler.NewCurrencyHandler(log, services.Currencies),
		checks:             checks,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Handler exposes the router for in-process tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
