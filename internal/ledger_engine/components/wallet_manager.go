package components

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/ledger_engine/service"
)

type WalletManagerImpl struct {
	walletRepo wallet.Repository
	logger     *slog.Logger
}

func NewWalletManager(walletRepo wallet.Repository, logger *slog.Logger) service.WalletManager {
	return &WalletManagerImpl{
		walletRepo: walletRepo,
		logger:     logger,
	}
}

type lockTarget struct {
	walletID uuid.UUID
	ownerID  uuid.UUID
}

// ApplyTransfer locks both wallets in wallet id order, debits the sender, credits the
// receiver and saves both. Lock order is independent of transfer direction.
func (m *WalletManagerImpl) ApplyTransfer(ctx context.Context, tx pgx.Tx, plan *service.TransferPlan) (*wallet.Wallet, *wallet.Wallet, error) {
	logger := m.logger
	if plan.CorrelationID != "" {
		logger = m.logger.With("correlation_id", plan.CorrelationID)
	}

	repoTx := m.walletRepo.WithTx(tx)

	targets := []lockTarget{
		{walletID: plan.SenderWalletID, ownerID: plan.SenderID},
		{walletID: plan.ReceiverWalletID, ownerID: plan.ReceiverID},
	}
	if bytes.Compare(targets[1].walletID[:], targets[0].walletID[:]) < 0 {
		targets[0], targets[1] = targets[1], targets[0]
	}

	locked := make(map[uuid.UUID]*wallet.Wallet, len(targets))
	for _, t := range targets {
		w, err := repoTx.LockForUpdate(ctx, t.walletID, t.ownerID)
		if err != nil {
			logger.Warn("Failed to lock wallet", "wallet_id", t.walletID.String(), "error", err)
			return nil, nil, err
		}
		locked[w.ID] = w
	}
	sender, receiver := locked[plan.SenderWalletID], locked[plan.ReceiverWalletID]

	if err := sender.Debit(plan.Debit); err != nil {
		logger.Warn("Failed to debit sender", "wallet_id", sender.ID.String(), "balance", sender.Balance.String(), "error", err)
		return nil, nil, err
	}
	if err := receiver.Credit(plan.Credit); err != nil {
		logger.Warn("Failed to credit receiver", "wallet_id", receiver.ID.String(), "error", err)
		return nil, nil, err
	}

	if err := repoTx.UpdateAll(ctx, []*wallet.Wallet{sender, receiver}); err != nil {
		m.logUpdateFailure(logger, err)
		return nil, nil, err
	}
	logger.Info("Transfer applied to wallets",
		"sender_wallet_id", sender.ID.String(), "sender_balance", sender.Balance.String(),
		"receiver_wallet_id", receiver.ID.String(), "receiver_balance", receiver.Balance.String())

	return sender, receiver, nil
}

// LockAndApply locks one wallet of the owner, mutates it with apply and saves it
func (m *WalletManagerImpl) LockAndApply(
	ctx context.Context,
	tx pgx.Tx,
	walletID, ownerID uuid.UUID,
	apply func(w *wallet.Wallet) (money.Money, error),
) (*wallet.Wallet, money.Money, error) {
	repoTx := m.walletRepo.WithTx(tx)

	w, err := repoTx.LockForUpdate(ctx, walletID, ownerID)
	if err != nil {
		m.logger.Warn("Failed to lock wallet", "wallet_id", walletID.String(), "error", err)
		return nil, money.Money{}, err
	}

	applied, err := apply(w)
	if err != nil {
		m.logger.Warn("Balance change rejected", "wallet_id", walletID.String(), "balance", w.Balance.String(), "error", err)
		return nil, money.Money{}, err
	}

	if err := repoTx.Update(ctx, w); err != nil {
		m.logUpdateFailure(m.logger, err)
		return nil, money.Money{}, err
	}
	return w, applied, nil
}

func (m *WalletManagerImpl) logUpdateFailure(logger *slog.Logger, err error) {
	var conflict wallet.ErrConcurrentModification
	if errors.As(err, &conflict) {
		logger.Warn("Concurrent modification on wallet update", "wallet_id", conflict.WalletID.String())
		return
	}
	logger.Error("Failed to update wallet", "error", err)
}
