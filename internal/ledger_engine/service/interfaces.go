package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/domain/wallet"
)

// TransferRequest is one peer-to-peer transfer as submitted by the sender
type TransferRequest struct {
	SenderWalletID   uuid.UUID
	ReceiverWalletID uuid.UUID
	ReceiverUsername string
	Amount           money.Money // in the sender wallet's currency
	CorrelationID    string
}

// TransferPlan is a validated transfer. Debit is in the sender currency and
// Credit in the receiver currency; ServiceCharge is set only across currencies.
type TransferPlan struct {
	SenderID         uuid.UUID
	ReceiverID       uuid.UUID
	SenderWalletID   uuid.UUID
	ReceiverWalletID uuid.UUID
	SenderCurrency   money.Currency
	ReceiverCurrency money.Currency
	Debit            money.Money
	Credit           money.Money
	ServiceCharge    *money.Money
	Timestamp        int64
	CorrelationID    string
}

// CrossCurrency reports whether the receiver holds a different currency
func (p *TransferPlan) CrossCurrency() bool {
	return p.SenderCurrency != p.ReceiverCurrency
}

// TransferResult is what a committed transfer produced
type TransferResult struct {
	Transaction  *ledger.Transaction
	SenderWallet *wallet.Wallet
}

// BalanceResult is what a committed deposit or withdrawal produced
type BalanceResult struct {
	Wallet *wallet.Wallet
	Entry  *ledger.Entry
}

// TransferEngine executes transfers atomically
type TransferEngine interface {
	Transfer(ctx context.Context, principal user.Principal, request *TransferRequest) (*TransferResult, error)
}

// BalanceService applies deposits and withdrawals to a single wallet
type BalanceService interface {
	Deposit(ctx context.Context, principal user.Principal, walletID uuid.UUID, amount money.Money, correlationID string) (*BalanceResult, error)
	Withdraw(ctx context.Context, principal user.Principal, walletID uuid.UUID, amount money.Money, correlationID string) (*BalanceResult, error)
}

// TransferValidator resolves and checks a request without mutating anything
type TransferValidator interface {
	Validate(ctx context.Context, principal user.Principal, request *TransferRequest) (*TransferPlan, error)
}

// FeeQuoter fills in the credit and service charge of a plan
type FeeQuoter interface {
	Quote(ctx context.Context, plan *TransferPlan) error
}

// WalletManager mutates locked wallets inside a database transaction
type WalletManager interface {
	ApplyTransfer(ctx context.Context, tx pgx.Tx, plan *TransferPlan) (sender, receiver *wallet.Wallet, err error)
	LockAndApply(ctx context.Context, tx pgx.Tx, walletID, ownerID uuid.UUID, apply func(w *wallet.Wallet) (money.Money, error)) (*wallet.Wallet, money.Money, error)
}

// LedgerRecorder writes ledger records and their outbox messages inside a database transaction
type LedgerRecorder interface {
	RecordTransfer(ctx context.Context, tx pgx.Tx, plan *TransferPlan) (*ledger.Transaction, error)
	RecordEntry(ctx context.Context, tx pgx.Tx, entry *ledger.Entry) error
}
