package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrMissingOwner is returned when a wallet is created without an owner
var ErrMissingOwner = errors.New("wallet owner is required")

// Repository defines wallet persistence operations
type Repository interface {
	Create(ctx context.Context, wallet *Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*Wallet, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*Wallet, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Wallet, error)

	// Update persists the balance if the stored version still matches wallet.Version,
	// then advances wallet.Version
	Update(ctx context.Context, wallet *Wallet) error
	UpdateAll(ctx context.Context, wallets []*Wallet) error
	DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// LockForUpdate loads a wallet scoped to its owner and holds a row lock until the transaction ends
	LockForUpdate(ctx context.Context, id, ownerID uuid.UUID) (*Wallet, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	WalletID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for wallet: " + e.WalletID.String()
}
