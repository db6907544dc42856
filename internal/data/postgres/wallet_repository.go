package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/platform/persistence"
)

const (
	walletColumns = `id, owner_id, currency, balance_minor, version, created_at, updated_at`

	insertWalletQuery = `
		INSERT INTO wallets (id, owner_id, currency, balance_minor, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	selectWalletByIDQuery = `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE id = $1
	`
	selectWalletByIDAndOwnerQuery = `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE id = $1 AND owner_id = $2
	`
	selectWalletsByOwnerQuery = `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`
	lockWalletQuery = `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE
	`
	updateWalletQuery = `
		UPDATE wallets
		SET balance_minor = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4
	`
	deleteWalletsByOwnerQuery = `
		DELETE FROM wallets
		WHERE owner_id = $1
	`
)

// WalletRepository implements the wallet.Repository interface for PostgreSQL
type WalletRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewWalletRepository creates a new PostgreSQL wallet repository
func NewWalletRepository(logger *slog.Logger, db *persistence.PostgresDB) wallet.Repository {
	return &WalletRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to the transaction
func (r *WalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	return &WalletRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new wallet
func (r *WalletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	_, err := r.querier.Exec(ctx, insertWalletQuery,
		w.ID,
		w.OwnerID,
		string(w.Currency()),
		w.Balance.MinorUnits(),
		w.Version,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create wallet", "owner_id", w.OwnerID.String(), "error", err)
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// GetByID retrieves a wallet regardless of owner
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	w, err := scanWallet(r.querier.QueryRow(ctx, selectWalletByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, walletNotFound(id)
		}
		r.logger.Error("Failed to get wallet", "wallet_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return w, nil
}

// GetByIDAndOwner retrieves a wallet only if it belongs to ownerID.
// Another user's wallet is reported as not found.
func (r *WalletRepository) GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*wallet.Wallet, error) {
	w, err := scanWallet(r.querier.QueryRow(ctx, selectWalletByIDAndOwnerQuery, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, walletNotFound(id)
		}
		r.logger.Error("Failed to get wallet for owner", "wallet_id", id.String(), "owner_id", ownerID.String(), "error", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return w, nil
}

// ListByOwner returns the owner's wallets, oldest first
func (r *WalletRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*wallet.Wallet, error) {
	rows, err := r.querier.Query(ctx, selectWalletsByOwnerQuery, ownerID)
	if err != nil {
		r.logger.Error("Failed to list wallets", "owner_id", ownerID.String(), "error", err)
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	wallets := make([]*wallet.Wallet, 0)
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			r.logger.Error("Failed to scan wallet", "error", err)
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over wallets", "error", err)
		return nil, fmt.Errorf("error iterating over wallets: %w", err)
	}

	return wallets, nil
}

// Update persists the balance when the stored version matches w.Version.
// Returns ErrConcurrentModification if another writer got there first.
func (r *WalletRepository) Update(ctx context.Context, w *wallet.Wallet) error {
	result, err := r.querier.Exec(ctx, updateWalletQuery,
		w.Balance.MinorUnits(),
		w.UpdatedAt,
		w.ID,
		w.Version,
	)
	if err != nil {
		r.logger.Error("Failed to update wallet", "wallet_id", w.ID.String(), "error", err)
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	if result.RowsAffected() == 0 {
		return wallet.ErrConcurrentModification{WalletID: w.ID}
	}

	w.Version++
	return nil
}

// UpdateAll saves each wallet in order and stops at the first failure.
// Callers run it inside a transaction so a failure leaves nothing applied.
func (r *WalletRepository) UpdateAll(ctx context.Context, wallets []*wallet.Wallet) error {
	for _, w := range wallets {
		if err := r.Update(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAllByOwner removes every wallet of the owner and returns how many were deleted
func (r *WalletRepository) DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	result, err := r.querier.Exec(ctx, deleteWalletsByOwnerQuery, ownerID)
	if err != nil {
		r.logger.Error("Failed to delete wallets", "owner_id", ownerID.String(), "error", err)
		return 0, fmt.Errorf("failed to delete wallets: %w", err)
	}

	return result.RowsAffected(), nil
}

// LockForUpdate loads the owner's wallet with a row lock held until the transaction ends
func (r *WalletRepository) LockForUpdate(ctx context.Context, id, ownerID uuid.UUID) (*wallet.Wallet, error) {
	w, err := scanWallet(r.querier.QueryRow(ctx, lockWalletQuery, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, walletNotFound(id)
		}
		r.logger.Error("Failed to lock wallet for update", "wallet_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock wallet for update: %w", err)
	}

	return w, nil
}

func scanWallet(row pgx.Row) (*wallet.Wallet, error) {
	var (
		w            wallet.Wallet
		currency     string
		balanceMinor int64
	)
	if err := row.Scan(
		&w.ID,
		&w.OwnerID,
		&currency,
		&balanceMinor,
		&w.Version,
		&w.CreatedAt,
		&w.UpdatedAt,
	); err != nil {
		return nil, err
	}
	w.Balance = money.FromMinorUnits(balanceMinor, money.Currency(currency))
	return &w, nil
}

func walletNotFound(id uuid.UUID) error {
	return shared.NewError(shared.KindWalletNotFound, "wallet not found: "+id.String())
}
