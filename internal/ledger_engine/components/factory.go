package components

import (
	"log/slog"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/outbox"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/ledger_engine/service"
	"github.com/wallet-ledger/internal/platform/persistence"
)

// Repositories groups the stores the engine writes through
type Repositories struct {
	Users        user.Repository
	Wallets      wallet.Repository
	Entries      ledger.EntryRepository
	Transactions ledger.TransactionRepository
	Outbox       outbox.Repository
}

// CreateTransferEngine wires the transfer engine behind a worker pool. The returned
// func releases the pool and is safe to call when the fallback engine is used.
func CreateTransferEngine(
	db persistence.TxRunner,
	repos Repositories,
	converter money.Converter,
	logger *slog.Logger,
	cfg *config.Config,
) (service.TransferEngine, func()) {
	fee := money.New(cfg.Transfer.FeeAmount, money.Currency(cfg.Transfer.FeeCurrency))

	baseEngine := service.NewTransferEngine(
		db,
		NewTransferValidator(repos.Users, repos.Wallets, logger),
		NewFeeQuoter(converter, fee, logger),
		NewWalletManager(repos.Wallets, logger),
		NewLedgerRecorder(repos.Entries, repos.Transactions, repos.Outbox, logger),
		cfg.Transfer.MaxRetries,
		logger,
	)

	if cfg.WorkerPool.Size <= 0 {
		logger.Warn("Worker pool disabled, transfers run on the request goroutine", "pool_size", cfg.WorkerPool.Size)
		return baseEngine, func() {}
	}

	workerPoolEngine, err := service.NewWorkerPoolTransferEngine(
		baseEngine,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool transfer engine, falling back to base engine", "error", err)
		return baseEngine, func() {}
	}

	logger.Info("Created worker pool transfer engine", "pool_size", cfg.WorkerPool.Size)
	return workerPoolEngine, workerPoolEngine.Shutdown
}

// CreateBalanceService wires deposits and withdrawals onto the same wallet manager and recorder
func CreateBalanceService(
	db persistence.TxRunner,
	repos Repositories,
	converter money.Converter,
	logger *slog.Logger,
	cfg *config.Config,
) service.BalanceService {
	return service.NewBalanceService(
		db,
		repos.Wallets,
		NewWalletManager(repos.Wallets, logger),
		NewLedgerRecorder(repos.Entries, repos.Transactions, repos.Outbox, logger),
		converter,
		cfg.Transfer.MaxRetries,
		logger,
	)
}
