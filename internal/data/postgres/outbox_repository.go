package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/domain/outbox"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/platform/persistence"
)

const (
	outboxColumnsPerRow = 6

	getPendingOutboxQuery = `
		SELECT id, entry_id, wallet_id, payload, status, attempts, created_at, last_attempt_at
		FROM ledger_outbox
		WHERE status = $1
		ORDER BY id ASC
		LIMIT $2`

	setOutboxStatusQuery = `
		UPDATE ledger_outbox
		SET status = $1, last_attempt_at = $2
		WHERE id = $3`

	recordOutboxFailureQuery = `
		UPDATE ledger_outbox
		SET attempts = attempts + 1,
			last_attempt_at = $1,
			status = CASE WHEN attempts + 1 >= $2 THEN $3 ELSE status END
		WHERE id = $4
		RETURNING status`
)

// OutboxRepository implements outbox.Repository on the ledger_outbox table
type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewOutboxRepository(logger *slog.Logger, db *persistence.PostgresDB) outbox.Repository {
	return &OutboxRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx binds the repository to the transaction that writes the ledger entries
func (r *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return &OutboxRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *OutboxRepository) CreateAll(ctx context.Context, messages []*outbox.Message) error {
	if len(messages) == 0 {
		return nil
	}

	query, args := buildOutboxInsert(messages)
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		return r.createAllError(messages, err)
	}
	defer rows.Close()

	byEntry := make(map[uuid.UUID]*outbox.Message, len(messages))
	for _, m := range messages {
		byEntry[m.EntryID] = m
	}

	assigned := 0
	for rows.Next() {
		var (
			entryID uuid.UUID
			id      int64
		)
		if err := rows.Scan(&entryID, &id); err != nil {
			return fmt.Errorf("failed to scan outbox id: %w", err)
		}
		if m, ok := byEntry[entryID]; ok {
			m.ID = id
			assigned++
		}
	}
	if err := rows.Err(); err != nil {
		return r.createAllError(messages, err)
	}
	if assigned != len(messages) {
		return fmt.Errorf("outbox insert returned %d ids for %d messages", assigned, len(messages))
	}

	return nil
}

func buildOutboxInsert(messages []*outbox.Message) (string, []interface{}) {
	var b strings.Builder
	b.WriteString("INSERT INTO ledger_outbox (entry_id, wallet_id, payload, status, attempts, created_at) VALUES ")

	args := make([]interface{}, 0, len(messages)*outboxColumnsPerRow)
	for i, m := range messages {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * outboxColumnsPerRow
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args, m.EntryID, m.WalletID, m.Payload, m.Status, m.Attempts, m.CreatedAt)
	}
	b.WriteString(" RETURNING entry_id, id")

	return b.String(), args
}

func (r *OutboxRepository) createAllError(messages []*outbox.Message, err error) error {
	entryIDs := make([]uuid.UUID, len(messages))
	for i, m := range messages {
		entryIDs[i] = m.EntryID
	}
	if isUniqueViolation(err) {
		return outbox.ErrDuplicateMessage{EntryIDs: entryIDs}
	}
	r.logger.Error("Failed to queue outbox messages", "count", len(messages), "error", err)
	return fmt.Errorf("failed to create outbox messages: %w", err)
}

// GetPending returns pending messages in insertion order
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	rows, err := r.querier.Query(ctx, getPendingOutboxQuery, shared.OutboxStatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to get pending outbox messages", "error", err)
		return nil, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*outbox.Message
	for rows.Next() {
		var m outbox.Message
		if err := rows.Scan(
			&m.ID,
			&m.EntryID,
			&m.WalletID,
			&m.Payload,
			&m.Status,
			&m.Attempts,
			&m.CreatedAt,
			&m.LastAttemptAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over outbox messages: %w", err)
	}

	return messages, nil
}

func (r *OutboxRepository) MarkProcessed(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, shared.OutboxStatusProcessed)
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, shared.OutboxStatusFailedToPublish)
}

func (r *OutboxRepository) setStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	result, err := r.querier.Exec(ctx, setOutboxStatusQuery, status, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update outbox message status", "id", id, "status", string(status), "error", err)
		return fmt.Errorf("failed to set outbox message %d to %s: %w", id, status, err)
	}
	if result.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}

func (r *OutboxRepository) RecordFailedAttempt(ctx context.Context, id int64, maxAttempts int) (shared.OutboxStatus, error) {
	var status shared.OutboxStatus
	err := r.querier.QueryRow(ctx, recordOutboxFailureQuery,
		time.Now().UTC(), maxAttempts, shared.OutboxStatusFailedToPublish, id,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", outbox.ErrMessageNotFound{ID: id}
		}
		r.logger.Error("Failed to record outbox publish failure", "id", id, "error", err)
		return "", fmt.Errorf("failed to record publish failure for outbox message %d: %w", id, err)
	}
	return status, nil
}
