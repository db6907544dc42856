package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/platform/persistence"
)

const (
	insertTransactionQuery = `
		INSERT INTO transactions (id, entry_timestamp, sender_id, receiver_id, sender_entry_id, receiver_entry_id, correlation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	selectTransactionsBase = `
		SELECT t.id, t.entry_timestamp, t.sender_id, t.receiver_id, t.correlation_id, t.created_at,
			se.id, se.wallet_id, se.owner_id, se.transaction_id, se.type, se.amount_minor, se.currency,
			se.service_charge_minor, se.entry_timestamp, se.correlation_id, se.created_at,
			re.id, re.wallet_id, re.owner_id, re.transaction_id, re.type, re.amount_minor, re.currency,
			re.service_charge_minor, re.entry_timestamp, re.correlation_id, re.created_at
		FROM transactions t
		JOIN ledger_entries se ON se.id = t.sender_entry_id
		JOIN ledger_entries re ON re.id = t.receiver_entry_id
	`
	selectTransactionsByUserQuery = selectTransactionsBase + `
		WHERE t.sender_id = $1 OR t.receiver_id = $1
		ORDER BY t.entry_timestamp ASC
	`
	selectTransactionByUserAndTimestampQuery = selectTransactionsBase + `
		WHERE (t.sender_id = $1 OR t.receiver_id = $1) AND t.entry_timestamp = $2
		ORDER BY t.created_at ASC
		LIMIT 1
	`
)

// TransactionRepository implements the ledger.TransactionRepository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.TransactionRepository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *TransactionRepository) WithTx(tx pgx.Tx) ledger.TransactionRepository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores the transaction row. Its entries must already be inserted.
func (r *TransactionRepository) Create(ctx context.Context, t *ledger.Transaction) error {
	_, err := r.querier.Exec(ctx, insertTransactionQuery,
		t.ID,
		t.Timestamp,
		t.SenderID,
		t.ReceiverID,
		t.SenderEntry.ID,
		t.ReceiverEntry.ID,
		t.CorrelationID,
		t.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "transaction_id", t.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// ListByUser returns transfers the user sent or received, oldest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Transaction, error) {
	rows, err := r.querier.Query(ctx, selectTransactionsByUserQuery, userID)
	if err != nil {
		r.logger.Error("Failed to list transactions", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*ledger.Transaction, 0)
	for rows.Next() {
		var row transactionRow
		if err := rows.Scan(row.targets()...); err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, row.transaction())
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transactions", "error", err)
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return transactions, nil
}

// GetByUserAndTimestamp returns the user's transfer recorded at that exact millisecond
func (r *TransactionRepository) GetByUserAndTimestamp(ctx context.Context, userID uuid.UUID, timestamp int64) (*ledger.Transaction, error) {
	var row transactionRow
	err := r.querier.QueryRow(ctx, selectTransactionByUserAndTimestampQuery, userID, timestamp).Scan(row.targets()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NewError(shared.KindTransactionNotFound,
				fmt.Sprintf("no transaction for user %s at %d", userID, timestamp))
		}
		r.logger.Error("Failed to get transaction", "user_id", userID.String(), "timestamp", timestamp, "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return row.transaction(), nil
}

type transactionRow struct {
	ID            uuid.UUID
	Timestamp     int64
	SenderID      uuid.UUID
	ReceiverID    uuid.UUID
	CorrelationID string
	CreatedAt     time.Time
	Sender        entryRow
	Receiver      entryRow
}

func (r *transactionRow) targets() []any {
	targets := []any{&r.ID, &r.Timestamp, &r.SenderID, &r.ReceiverID, &r.CorrelationID, &r.CreatedAt}
	targets = append(targets, r.Sender.targets()...)
	return append(targets, r.Receiver.targets()...)
}

func (r *transactionRow) transaction() *ledger.Transaction {
	return &ledger.Transaction{
		ID:            r.ID,
		Timestamp:     r.Timestamp,
		SenderID:      r.SenderID,
		ReceiverID:    r.ReceiverID,
		SenderEntry:   r.Sender.entry(),
		ReceiverEntry: r.Receiver.entry(),
		CorrelationID: r.CorrelationID,
		CreatedAt:     r.CreatedAt,
	}
}
