package components

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/outbox"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/domain/wallet"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepo) WithTx(tx pgx.Tx) user.Repository {
	return m
}

type MockWalletRepo struct {
	mock.Mock
}

func (m *MockWalletRepo) Create(ctx context.Context, w *wallet.Wallet) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*wallet.Wallet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepo) Update(ctx context.Context, w *wallet.Wallet) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockWalletRepo) UpdateAll(ctx context.Context, wallets []*wallet.Wallet) error {
	return m.Called(ctx, wallets).Error(0)
}

func (m *MockWalletRepo) DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletRepo) LockForUpdate(ctx context.Context, id, ownerID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepo) WithTx(tx pgx.Tx) wallet.Repository {
	return m
}

type MockEntryRepo struct {
	mock.Mock
}

func (m *MockEntryRepo) CreateAll(ctx context.Context, entries []*ledger.Entry) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *MockEntryRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockEntryRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockEntryRepo) GetByWalletAndTimestamp(ctx context.Context, walletID uuid.UUID, timestamp int64) (*ledger.Entry, error) {
	args := m.Called(ctx, walletID, timestamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockEntryRepo) WithTx(tx pgx.Tx) ledger.EntryRepository {
	return m
}

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, t *ledger.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTransactionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Transaction, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) GetByUserAndTimestamp(ctx context.Context, userID uuid.UUID, timestamp int64) (*ledger.Transaction, error) {
	args := m.Called(ctx, userID, timestamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) WithTx(tx pgx.Tx) ledger.TransactionRepository {
	return m
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) CreateAll(ctx context.Context, messages []*outbox.Message) error {
	return m.Called(ctx, messages).Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) MarkProcessed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) MarkFailed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) RecordFailedAttempt(ctx context.Context, id int64, maxAttempts int) (shared.OutboxStatus, error) {
	args := m.Called(ctx, id, maxAttempts)
	return args.Get(0).(shared.OutboxStatus), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustMoney(amount string, currency money.Currency) money.Money {
	return money.New(decimal.RequireFromString(amount), currency)
}

func testWallet(ownerID uuid.UUID, balance string, currency money.Currency) *wallet.Wallet {
	return &wallet.Wallet{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Balance: mustMoney(balance, currency),
		Version: 1,
	}
}

// fixedRates converts through a table of unit values relative to INR and counts calls
type fixedRates struct {
	values map[money.Currency]decimal.Decimal
	calls  int
	err    error
}

func (r *fixedRates) Convert(_ context.Context, from, to money.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	r.calls++
	if r.err != nil {
		return decimal.Zero, r.err
	}
	return amount.Mul(r.values[from]).Div(r.values[to]), nil
}
