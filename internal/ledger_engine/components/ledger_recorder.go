package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/outbox"
	"github.com/wallet-ledger/internal/ledger_engine/service"
)

// LedgerRecorderImpl writes ledger rows and queues one outbox message per entry
type LedgerRecorderImpl struct {
	entryRepo       ledger.EntryRepository
	transactionRepo ledger.TransactionRepository
	outboxRepo      outbox.Repository
	logger          *slog.Logger
}

func NewLedgerRecorder(
	entryRepo ledger.EntryRepository,
	transactionRepo ledger.TransactionRepository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) service.LedgerRecorder {
	return &LedgerRecorderImpl{
		entryRepo:       entryRepo,
		transactionRepo: transactionRepo,
		outboxRepo:      outboxRepo,
		logger:          logger,
	}
}

func (r *LedgerRecorderImpl) RecordTransfer(ctx context.Context, tx pgx.Tx, plan *service.TransferPlan) (*ledger.Transaction, error) {
	transaction := ledger.NewTransfer(ledger.TransferParams{
		SenderID:         plan.SenderID,
		ReceiverID:       plan.ReceiverID,
		SenderWalletID:   plan.SenderWalletID,
		ReceiverWalletID: plan.ReceiverWalletID,
		Debit:            plan.Debit,
		Credit:           plan.Credit,
		ServiceCharge:    plan.ServiceCharge,
		Timestamp:        plan.Timestamp,
		CorrelationID:    plan.CorrelationID,
	})

	if err := r.entryRepo.WithTx(tx).CreateAll(ctx, transaction.Entries()); err != nil {
		return nil, err
	}
	if err := r.transactionRepo.WithTx(tx).Create(ctx, transaction); err != nil {
		return nil, err
	}
	if err := r.enqueue(ctx, tx, transaction.Entries()...); err != nil {
		return nil, err
	}

	r.logger.Info("Transfer recorded",
		"transaction_id", transaction.ID.String(),
		"timestamp", transaction.Timestamp,
		"correlation_id", transaction.CorrelationID)
	return transaction, nil
}

func (r *LedgerRecorderImpl) RecordEntry(ctx context.Context, tx pgx.Tx, entry *ledger.Entry) error {
	if err := r.entryRepo.WithTx(tx).CreateAll(ctx, []*ledger.Entry{entry}); err != nil {
		return err
	}
	return r.enqueue(ctx, tx, entry)
}

func (r *LedgerRecorderImpl) enqueue(ctx context.Context, tx pgx.Tx, entries ...*ledger.Entry) error {
	messages, err := outbox.NewMessages(entries...)
	if err != nil {
		r.logger.Error("Failed to build outbox payload", "error", err)
		return fmt.Errorf("failed to build outbox messages: %w", err)
	}

	if err := r.outboxRepo.WithTx(tx).CreateAll(ctx, messages); err != nil {
		r.logger.Error("Failed to queue ledger events", "count", len(messages), "error", err)
		return fmt.Errorf("failed to queue ledger events: %w", err)
	}
	return nil
}
