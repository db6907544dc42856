package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/platform/persistence"
)

const (
	entryColumns = `id, wallet_id, owner_id, transaction_id, type, amount_minor, currency, service_charge_minor, entry_timestamp, correlation_id, created_at`

	insertEntryQuery = `
		INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	selectEntriesByWalletQuery = `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE wallet_id = $1
		ORDER BY entry_timestamp ASC, created_at ASC
	`
	selectEntriesByOwnerQuery = `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE owner_id = $1
		ORDER BY entry_timestamp ASC, created_at ASC
	`
	selectEntryByWalletAndTimestampQuery = `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE wallet_id = $1 AND entry_timestamp = $2
		ORDER BY created_at ASC
		LIMIT 1
	`
)

// LedgerEntryRepository implements the ledger.EntryRepository interface for PostgreSQL
type LedgerEntryRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerEntryRepository creates a new PostgreSQL ledger entry repository
func NewLedgerEntryRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.EntryRepository {
	return &LedgerEntryRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *LedgerEntryRepository) WithTx(tx pgx.Tx) ledger.EntryRepository {
	return &LedgerEntryRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// CreateAll inserts the entries in order
func (r *LedgerEntryRepository) CreateAll(ctx context.Context, entries []*ledger.Entry) error {
	for _, e := range entries {
		_, err := r.querier.Exec(ctx, insertEntryQuery,
			e.ID,
			e.WalletID,
			e.OwnerID,
			e.TransactionID,
			string(e.Type),
			e.Money.MinorUnits(),
			string(e.Money.Currency),
			serviceChargeMinor(e),
			e.Timestamp,
			e.CorrelationID,
			e.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to create ledger entry",
				"entry_id", e.ID.String(),
				"wallet_id", e.WalletID.String(),
				"error", err,
			)
			return fmt.Errorf("failed to create ledger entry: %w", err)
		}
	}
	return nil
}

func (r *LedgerEntryRepository) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]*ledger.Entry, error) {
	return r.list(ctx, selectEntriesByWalletQuery, walletID)
}

func (r *LedgerEntryRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*ledger.Entry, error) {
	return r.list(ctx, selectEntriesByOwnerQuery, ownerID)
}

// GetByWalletAndTimestamp returns the earliest entry of the wallet at that millisecond
func (r *LedgerEntryRepository) GetByWalletAndTimestamp(ctx context.Context, walletID uuid.UUID, timestamp int64) (*ledger.Entry, error) {
	var row entryRow
	err := r.querier.QueryRow(ctx, selectEntryByWalletAndTimestampQuery, walletID, timestamp).Scan(row.targets()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NewError(shared.KindEntryNotFound,
				fmt.Sprintf("no entry for wallet %s at %d", walletID, timestamp))
		}
		r.logger.Error("Failed to get ledger entry", "wallet_id", walletID.String(), "timestamp", timestamp, "error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return row.entry(), nil
}

func (r *LedgerEntryRepository) list(ctx context.Context, query string, id uuid.UUID) ([]*ledger.Entry, error) {
	rows, err := r.querier.Query(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to list ledger entries", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*ledger.Entry, 0)
	for rows.Next() {
		var row entryRow
		if err := rows.Scan(row.targets()...); err != nil {
			r.logger.Error("Failed to scan ledger entry", "error", err)
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, row.entry())
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over ledger entries", "error", err)
		return nil, fmt.Errorf("error iterating over ledger entries: %w", err)
	}

	return entries, nil
}

// entryRow mirrors one ledger_entries row before it is turned into domain values
type entryRow struct {
	ID                 uuid.UUID
	WalletID           uuid.UUID
	OwnerID            uuid.UUID
	TransactionID      *uuid.UUID
	Type               string
	AmountMinor        int64
	Currency           string
	ServiceChargeMinor *int64
	Timestamp          int64
	CorrelationID      string
	CreatedAt          time.Time
}

func (r *entryRow) targets() []any {
	return []any{
		&r.ID,
		&r.WalletID,
		&r.OwnerID,
		&r.TransactionID,
		&r.Type,
		&r.AmountMinor,
		&r.Currency,
		&r.ServiceChargeMinor,
		&r.Timestamp,
		&r.CorrelationID,
		&r.CreatedAt,
	}
}

func (r *entryRow) entry() *ledger.Entry {
	e := &ledger.Entry{
		ID:            r.ID,
		WalletID:      r.WalletID,
		OwnerID:       r.OwnerID,
		TransactionID: r.TransactionID,
		Type:          shared.EntryType(r.Type),
		Money:         money.FromMinorUnits(r.AmountMinor, money.Currency(r.Currency)),
		Timestamp:     r.Timestamp,
		CorrelationID: r.CorrelationID,
		CreatedAt:     r.CreatedAt,
	}
	if r.ServiceChargeMinor != nil {
		fee := decimal.New(*r.ServiceChargeMinor, -2)
		e.ServiceCharge = &fee
	}
	return e
}

func serviceChargeMinor(e *ledger.Entry) *int64 {
	if e.ServiceCharge == nil {
		return nil
	}
	minor := e.ServiceCharge.Shift(2).Round(0).IntPart()
	return &minor
}
