package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/domain/currency"
	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/passbook"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/domain/wallet"
	engine "github.com/wallet-ledger/internal/ledger_engine/service"
)

// UserService manages registration and removal of wallet owners
type UserService interface {
	// Register creates the user and a first wallet in the user's currency.
	// Returns CurrencyNotFound if the currency is not registered and UserAlreadyExists for a taken username.
	Register(ctx context.Context, username, name string, cur money.Currency) (*user.User, *wallet.Wallet, error)

	// Delete removes the principal and all of their wallets. Ledger history is kept.
	Delete(ctx context.Context, principal user.Principal) error
}

// WalletService exposes the per-wallet use cases
type WalletService interface {
	Create(ctx context.Context, principal user.Principal) (*wallet.Wallet, error)
	List(ctx context.Context, principal user.Principal) ([]*wallet.Wallet, error)
	Deposit(ctx context.Context, principal user.Principal, walletID uuid.UUID, amount money.Money, correlationID string) (*engine.BalanceResult, error)
	Withdraw(ctx context.Context, principal user.Principal, walletID uuid.UUID, amount money.Money, correlationID string) (*engine.BalanceResult, error)

	// FetchLedger returns every entry of an owned wallet, oldest first
	FetchLedger(ctx context.Context, principal user.Principal, walletID uuid.UUID) ([]*ledger.Entry, error)

	// FetchEntry returns the earliest entry of an owned wallet at that exact millisecond
	FetchEntry(ctx context.Context, principal user.Principal, walletID uuid.UUID, timestamp int64) (*ledger.Entry, error)
}

// TransactionService exposes transfers and their history
type TransactionService interface {
	Transfer(ctx context.Context, principal user.Principal, request *engine.TransferRequest) (*engine.TransferResult, error)
	List(ctx context.Context, principal user.Principal) ([]*ledger.Transaction, error)
	GetByTimestamp(ctx context.Context, principal user.Principal, timestamp int64) (*ledger.Transaction, error)
}

// PassbookService reads the projected passbook
type PassbookService interface {
	// List returns one page of the principal's passbook, newest first, and the total record count
	List(ctx context.Context, principal user.Principal, page, pageSize int) ([]*passbook.Record, int64, error)
}

// CurrencyValue is one requested registry change
type CurrencyValue struct {
	Code  string
	Value decimal.Decimal
}

// CurrencyService manages the currency registry
type CurrencyService interface {
	List(ctx context.Context) ([]*currency.Currency, error)
	Get(ctx context.Context, code string) (*currency.Currency, error)
	Add(ctx context.Context, value CurrencyValue) (*currency.Currency, error)
	Update(ctx context.Context, value CurrencyValue) (*currency.Currency, error)

	// UpdateMany applies every change or none of them
	UpdateMany(ctx context.Context, values []CurrencyValue) ([]*currency.Currency, error)
}
