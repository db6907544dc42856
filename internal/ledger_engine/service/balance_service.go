package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/platform/persistence"
)

type BalanceServiceImpl struct {
	db             persistence.TxRunner
	walletRepo     wallet.Repository
	walletManager  WalletManager
	ledgerRecorder LedgerRecorder
	converter      money.Converter
	maxAttempts    int
	logger         *slog.Logger
}

func NewBalanceService(
	db persistence.TxRunner,
	walletRepo wallet.Repository,
	walletManager WalletManager,
	ledgerRecorder LedgerRecorder,
	converter money.Converter,
	maxAttempts int,
	logger *slog.Logger,
) BalanceService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &BalanceServiceImpl{
		db:             db,
		walletRepo:     walletRepo,
		walletManager:  walletManager,
		ledgerRecorder: ledgerRecorder,
		converter:      converter,
		maxAttempts:    maxAttempts,
		logger:         logger,
	}
}

func (s *BalanceServiceImpl) Deposit(ctx context.Context, principal user.Principal, walletID uuid.UUID, amount money.Money, correlationID string) (*BalanceResult, error) {
	return s.change(ctx, principal, walletID, amount, correlationID, shared.EntryTypeDeposit)
}

func (s *BalanceServiceImpl) Withdraw(ctx context.Context, principal user.Principal, walletID uuid.UUID, amount money.Money, correlationID string) (*BalanceResult, error) {
	return s.change(ctx, principal, walletID, amount, correlationID, shared.EntryTypeWithdraw)
}

// change converts a foreign amount before taking any lock, then applies it to the locked
// wallet and records the entry in the same transaction
func (s *BalanceServiceImpl) change(
	ctx context.Context,
	principal user.Principal,
	walletID uuid.UUID,
	amount money.Money,
	correlationID string,
	entryType shared.EntryType,
) (*BalanceResult, error) {
	logger := s.logger.With("wallet_id", walletID.String(), "type", string(entryType))
	if correlationID != "" {
		logger = logger.With("correlation_id", correlationID)
	}

	if err := amount.Validate(); err != nil {
		return nil, err
	}

	current, err := s.walletRepo.GetByIDAndOwner(ctx, walletID, principal.UserID)
	if err != nil {
		return nil, err
	}

	converted, err := amount.ConvertTo(ctx, s.converter, current.Currency())
	if err != nil {
		logger.Warn("Conversion failed", "from", string(amount.Currency), "to", string(current.Currency()), "error", err)
		return nil, err
	}

	apply := func(w *wallet.Wallet) (money.Money, error) {
		// converted is already in the wallet currency so no converter is needed
		if entryType == shared.EntryTypeDeposit {
			return w.Deposit(ctx, nil, converted)
		}
		return w.Withdraw(ctx, nil, converted)
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		var result *BalanceResult
		result, err = s.applyOnce(ctx, principal, walletID, entryType, correlationID, apply)
		if err == nil {
			logger.Info("Balance change committed",
				"entry_id", result.Entry.ID.String(),
				"amount", result.Entry.Money.String(),
				"balance", result.Wallet.Balance.String())
			return result, nil
		}

		var conflict wallet.ErrConcurrentModification
		if !errors.As(err, &conflict) {
			return nil, err
		}
		logger.Warn("Concurrent wallet modification, retrying", "attempt", attempt)
	}
	return nil, fmt.Errorf("balance change aborted after %d attempts: %w", s.maxAttempts, err)
}

func (s *BalanceServiceImpl) applyOnce(
	ctx context.Context,
	principal user.Principal,
	walletID uuid.UUID,
	entryType shared.EntryType,
	correlationID string,
	apply func(w *wallet.Wallet) (money.Money, error),
) (*BalanceResult, error) {
	var result BalanceResult
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		updated, applied, err := s.walletManager.LockAndApply(ctx, tx, walletID, principal.UserID, apply)
		if err != nil {
			return err
		}

		entry := ledger.NewEntry(updated.ID, updated.OwnerID, entryType, applied, ledger.NowMillis())
		entry.CorrelationID = correlationID
		if err := s.ledgerRecorder.RecordEntry(ctx, tx, entry); err != nil {
			return err
		}

		result = BalanceResult{Wallet: updated, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
