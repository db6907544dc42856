package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/platform/persistence"
)

type TransferEngineImpl struct {
	db             persistence.TxRunner
	validator      TransferValidator
	quoter         FeeQuoter
	walletManager  WalletManager
	ledgerRecorder LedgerRecorder
	maxAttempts    int
	logger         *slog.Logger
}

func NewTransferEngine(
	db persistence.TxRunner,
	validator TransferValidator,
	quoter FeeQuoter,
	walletManager WalletManager,
	ledgerRecorder LedgerRecorder,
	maxAttempts int,
	logger *slog.Logger,
) TransferEngine {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &TransferEngineImpl{
		db:             db,
		validator:      validator,
		quoter:         quoter,
		walletManager:  walletManager,
		ledgerRecorder: ledgerRecorder,
		maxAttempts:    maxAttempts,
		logger:         logger,
	}
}

// Transfer validates and quotes once, then applies the plan in one database transaction.
// Only a lost optimistic-lock race is retried; the quote is reused so FX is never called twice.
func (s *TransferEngineImpl) Transfer(ctx context.Context, principal user.Principal, request *TransferRequest) (*TransferResult, error) {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	plan, err := s.validator.Validate(ctx, principal, request)
	if err != nil {
		logger.Info("Transfer rejected", "sender_id", principal.UserID.String(), "error", err)
		return nil, err
	}

	if err := s.quoter.Quote(ctx, plan); err != nil {
		logger.Warn("Transfer quote failed", "sender_wallet_id", plan.SenderWalletID.String(), "error", err)
		return nil, err
	}

	var result *TransferResult
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result, err = s.apply(ctx, plan)
		if err == nil {
			break
		}

		var conflict wallet.ErrConcurrentModification
		if !errors.As(err, &conflict) {
			return nil, err
		}
		logger.Warn("Concurrent wallet modification, retrying transfer",
			"wallet_id", conflict.WalletID.String(),
			"attempt", attempt,
			"max_attempts", s.maxAttempts)
	}
	if err != nil {
		return nil, fmt.Errorf("transfer aborted after %d attempts: %w", s.maxAttempts, err)
	}

	logger.Info("Transfer committed",
		"transaction_id", result.Transaction.ID.String(),
		"sender_wallet_id", plan.SenderWalletID.String(),
		"receiver_wallet_id", plan.ReceiverWalletID.String(),
		"debit", plan.Debit.String(),
		"credit", plan.Credit.String())
	return result, nil
}

func (s *TransferEngineImpl) apply(ctx context.Context, plan *TransferPlan) (*TransferResult, error) {
	var result TransferResult
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		sender, _, err := s.walletManager.ApplyTransfer(ctx, tx, plan)
		if err != nil {
			return err
		}

		var transaction *ledger.Transaction
		transaction, err = s.ledgerRecorder.RecordTransfer(ctx, tx, plan)
		if err != nil {
			return err
		}

		result = TransferResult{Transaction: transaction, SenderWallet: sender}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
