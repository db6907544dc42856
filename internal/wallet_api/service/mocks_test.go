package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/wallet-ledger/internal/domain/currency"
	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/passbook"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/domain/wallet"
	engine "github.com/wallet-ledger/internal/ledger_engine/service"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) WithTx(tx pgx.Tx) user.Repository {
	return m
}

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*wallet.Wallet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Update(ctx context.Context, w *wallet.Wallet) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockWalletRepository) UpdateAll(ctx context.Context, wallets []*wallet.Wallet) error {
	return m.Called(ctx, wallets).Error(0)
}

func (m *MockWalletRepository) DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletRepository) LockForUpdate(ctx context.Context, id, ownerID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	return m
}

type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) Create(ctx context.Context, c *currency.Currency) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCurrencyRepository) Get(ctx context.Context, code money.Currency) (*currency.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) List(ctx context.Context) ([]*currency.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*currency.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) Update(ctx context.Context, c *currency.Currency) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCurrencyRepository) WithTx(tx pgx.Tx) currency.Repository {
	return m
}

type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) CreateAll(ctx context.Context, entries []*ledger.Entry) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *MockEntryRepository) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockEntryRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockEntryRepository) GetByWalletAndTimestamp(ctx context.Context, walletID uuid.UUID, timestamp int64) (*ledger.Entry, error) {
	args := m.Called(ctx, walletID, timestamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockEntryRepository) WithTx(tx pgx.Tx) ledger.EntryRepository {
	return m
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, t *ledger.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByUserAndTimestamp(ctx context.Context, userID uuid.UUID, timestamp int64) (*ledger.Transaction, error) {
	args := m.Called(ctx, userID, timestamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) WithTx(tx pgx.Tx) ledger.TransactionRepository {
	return m
}

type MockPassbookRepository struct {
	mock.Mock
}

func (m *MockPassbookRepository) Upsert(ctx context.Context, record *passbook.Record) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockPassbookRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*passbook.Record, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*passbook.Record), args.Error(1)
}

func (m *MockPassbookRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) Deposit(ctx context.Context, principal user.Principal, walletID uuid.UUID, amount money.Money, correlationID string) (*engine.BalanceResult, error) {
	args := m.Called(ctx, principal, walletID, amount, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.BalanceResult), args.Error(1)
}

func (m *MockBalanceService) Withdraw(ctx context.Context, principal user.Principal, walletID uuid.UUID, amount money.Money, correlationID string) (*engine.BalanceResult, error) {
	args := m.Called(ctx, principal, walletID, amount, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.BalanceResult), args.Error(1)
}

type MockTransferEngine struct {
	mock.Mock
}

func (m *MockTransferEngine) Transfer(ctx context.Context, principal user.Principal, request *engine.TransferRequest) (*engine.TransferResult, error) {
	args := m.Called(ctx, principal, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.TransferResult), args.Error(1)
}

// fakeTxRunner runs fn without a database. A non-nil err is returned without calling fn.
type fakeTxRunner struct {
	calls int
	err   error
}

func (r *fakeTxRunner) ExecuteTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	return fn(nil)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPrincipal() user.Principal {
	return user.Principal{UserID: uuid.New(), Username: "alice", Role: user.RoleUser}
}
