package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/domain/wallet"
	engine "github.com/wallet-ledger/internal/ledger_engine/service"
)

// WalletServiceImpl implements the WalletService interface
type WalletServiceImpl struct {
	userRepo       user.Repository
	walletRepo     wallet.Repository
	entryRepo      ledger.EntryRepository
	balanceService engine.BalanceService
	logger         *slog.Logger
}

func NewWalletService(
	userRepo user.Repository,
	walletRepo wallet.Repository,
	entryRepo ledger.EntryRepository,
	balanceService engine.BalanceService,
	logger *slog.Logger,
) WalletService {
	return &WalletServiceImpl{
		userRepo:       userRepo,
		walletRepo:     walletRepo,
		entryRepo:      entryRepo,
		balanceService: balanceService,
		logger:         logger,
	}
}

// Create opens another wallet in the owner's registered currency
func (s *WalletServiceImpl) Create(ctx context.Context, principal user.Principal) (*wallet.Wallet, error) {
	owner, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	w, err := wallet.NewWallet(owner.ID, owner.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to build wallet: %w", err)
	}
	if err := s.walletRepo.Create(ctx, w); err != nil {
		return nil, err
	}

	s.logger.Info("Wallet created", "wallet_id", w.ID.String(), "user_id", owner.ID.String(), "currency", string(w.Currency()))
	return w, nil
}

func (s *WalletServiceImpl) List(ctx context.Context, principal user.Principal) ([]*wallet.Wallet, error) {
	return s.walletRepo.ListByOwner(ctx, principal.UserID)
}

func (s *WalletServiceImpl) Deposit(ctx context.Context, principal user.Principal, walletID uuid.UUID, amount money.Money, correlationID string) (*engine.BalanceResult, error) {
	return s.balanceService.Deposit(ctx, principal, walletID, amount, correlationID)
}

func (s *WalletServiceImpl) Withdraw(ctx context.Context, principal user.Principal, walletID uuid.UUID, amount money.Money, correlationID string) (*engine.BalanceResult, error) {
	return s.balanceService.Withdraw(ctx, principal, walletID, amount, correlationID)
}

func (s *WalletServiceImpl) FetchLedger(ctx context.Context, principal user.Principal, walletID uuid.UUID) ([]*ledger.Entry, error) {
	if _, err := s.walletRepo.GetByIDAndOwner(ctx, walletID, principal.UserID); err != nil {
		return nil, err
	}
	return s.entryRepo.ListByWallet(ctx, walletID)
}

func (s *WalletServiceImpl) FetchEntry(ctx context.Context, principal user.Principal, walletID uuid.UUID, timestamp int64) (*ledger.Entry, error) {
	if _, err := s.walletRepo.GetByIDAndOwner(ctx, walletID, principal.UserID); err != nil {
		return nil, err
	}
	return s.entryRepo.GetByWalletAndTimestamp(ctx, walletID, timestamp)
}
