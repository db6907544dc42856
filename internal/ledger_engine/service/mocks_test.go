package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/domain/wallet"
)

type MockTransferValidator struct {
	mock.Mock
}

func (m *MockTransferValidator) Validate(ctx context.Context, principal user.Principal, request *TransferRequest) (*TransferPlan, error) {
	args := m.Called(ctx, principal, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TransferPlan), args.Error(1)
}

type MockFeeQuoter struct {
	mock.Mock
}

func (m *MockFeeQuoter) Quote(ctx context.Context, plan *TransferPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

type MockWalletManager struct {
	mock.Mock
}

func (m *MockWalletManager) ApplyTransfer(ctx context.Context, tx pgx.Tx, plan *TransferPlan) (*wallet.Wallet, *wallet.Wallet, error) {
	args := m.Called(ctx, tx, plan)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*wallet.Wallet), args.Get(1).(*wallet.Wallet), args.Error(2)
}

func (m *MockWalletManager) LockAndApply(ctx context.Context, tx pgx.Tx, walletID, ownerID uuid.UUID, apply func(w *wallet.Wallet) (money.Money, error)) (*wallet.Wallet, money.Money, error) {
	args := m.Called(ctx, tx, walletID, ownerID, apply)
	if args.Get(0) == nil {
		return nil, money.Money{}, args.Error(2)
	}
	return args.Get(0).(*wallet.Wallet), args.Get(1).(money.Money), args.Error(2)
}

type MockLedgerRecorder struct {
	mock.Mock
}

func (m *MockLedgerRecorder) RecordTransfer(ctx context.Context, tx pgx.Tx, plan *TransferPlan) (*ledger.Transaction, error) {
	args := m.Called(ctx, tx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockLedgerRecorder) RecordEntry(ctx context.Context, tx pgx.Tx, entry *ledger.Entry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

type MockTransferEngine struct {
	mock.Mock
}

func (m *MockTransferEngine) Transfer(ctx context.Context, principal user.Principal, request *TransferRequest) (*TransferResult, error) {
	args := m.Called(ctx, principal, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TransferResult), args.Error(1)
}

// fakeTxRunner runs fn without a database and counts the transactions it opened
type fakeTxRunner struct {
	calls int
}

func (r *fakeTxRunner) ExecuteTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	r.calls++
	return fn(nil)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
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
