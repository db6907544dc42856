package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/domain/currency"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/platform/persistence"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	db           persistence.TxRunner
	userRepo     user.Repository
	walletRepo   wallet.Repository
	currencyRepo currency.Repository
	logger       *slog.Logger
}

func NewUserService(
	db persistence.TxRunner,
	userRepo user.Repository,
	walletRepo wallet.Repository,
	currencyRepo currency.Repository,
	logger *slog.Logger,
) UserService {
	return &UserServiceImpl{
		db:           db,
		userRepo:     userRepo,
		walletRepo:   walletRepo,
		currencyRepo: currencyRepo,
		logger:       logger,
	}
}

func (s *UserServiceImpl) Register(ctx context.Context, username, name string, cur money.Currency) (*user.User, *wallet.Wallet, error) {
	u, err := user.NewUser(username, name, cur, user.RoleUser)
	if err != nil {
		return nil, nil, shared.WrapError(shared.KindInvalidRequest, err.Error(), err)
	}
	w, err := wallet.NewWallet(u.ID, u.Currency)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build first wallet: %w", err)
	}

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.currencyRepo.WithTx(tx).Get(ctx, u.Currency); err != nil {
			return err
		}
		if err := s.userRepo.WithTx(tx).Create(ctx, u); err != nil {
			return err
		}
		return s.walletRepo.WithTx(tx).Create(ctx, w)
	})
	if err != nil {
		s.logger.Warn("Registration failed", "username", u.Username, "currency", string(u.Currency), "error", err)
		return nil, nil, err
	}

	s.logger.Info("User registered", "user_id", u.ID.String(), "wallet_id", w.ID.String())
	return u, w, nil
}

func (s *UserServiceImpl) Delete(ctx context.Context, principal user.Principal) error {
	var removed int64
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		var err error
		if removed, err = s.walletRepo.WithTx(tx).DeleteAllByOwner(ctx, principal.UserID); err != nil {
			return err
		}
		return s.userRepo.WithTx(tx).Delete(ctx, principal.UserID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("User deleted", "user_id", principal.UserID.String(), "wallets_removed", removed)
	return nil
}
