package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EntryRepository stores append-only ledger entries
type EntryRepository interface {
	CreateAll(ctx context.Context, entries []*Entry) error
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]*Entry, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Entry, error)

	// GetByWalletAndTimestamp returns the earliest entry recorded at that exact millisecond
	GetByWalletAndTimestamp(ctx context.Context, walletID uuid.UUID, timestamp int64) (*Entry, error)
	WithTx(tx pgx.Tx) EntryRepository
}

// TransactionRepository stores transfer records together with their entries
type TransactionRepository interface {
	Create(ctx context.Context, transaction *Transaction) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Transaction, error)
	GetByUserAndTimestamp(ctx context.Context, userID uuid.UUID, timestamp int64) (*Transaction, error)
	WithTx(tx pgx.Tx) TransactionRepository
}
