package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/passbook"
	"github.com/wallet-ledger/internal/platform/messaging/producers"
)

var errInvalidEvent = errors.New("ledger event is missing entry id, wallet id or type")

// PassbookEventHandler projects ledger events into the passbook read model
type PassbookEventHandler struct {
	passbookRepo passbook.Repository
	producer     producers.DeadLetterPublisher
	logger       *slog.Logger
}

func NewPassbookEventHandler(
	logger *slog.Logger,
	passbookRepo passbook.Repository,
	producer producers.DeadLetterPublisher,
) *PassbookEventHandler {
	return &PassbookEventHandler{
		passbookRepo: passbookRepo,
		producer:     producer,
		logger:       logger,
	}
}

// HandleMessage upserts the event's entry. Unusable payloads are parked on the DLQ, or dropped
// when no DLQ is configured, and acknowledged. Storage failures are returned so the consumer retries.
func (h *PassbookEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var entry ledger.Entry
	err := json.Unmarshal(value, &entry)
	if err == nil && !validEvent(&entry) {
		err = errInvalidEvent
	}
	if err != nil {
		return h.deadLetter(ctx, key, value, err)
	}

	logger := h.logger
	if entry.CorrelationID != "" {
		logger = h.logger.With("correlation_id", entry.CorrelationID)
	}

	if err := h.passbookRepo.Upsert(ctx, passbook.FromEntry(&entry)); err != nil {
		logger.Error("Failed to project ledger entry",
			"entry_id", entry.ID.String(),
			"owner_id", entry.OwnerID.String(),
			"error", err,
		)
		return fmt.Errorf("projecting entry %s failed: %w", entry.ID, err)
	}

	logger.Info("Projected ledger entry",
		"entry_id", entry.ID.String(),
		"wallet_id", entry.WalletID.String(),
		"type", string(entry.Type),
		"amount", entry.Money.String(),
	)
	return nil
}

func (h *PassbookEventHandler) deadLetter(ctx context.Context, key, value []byte, cause error) error {
	const reason = "Failed to decode ledger event from Kafka message"
	h.logger.Error(reason, "error", cause, "message_key", string(key))

	if h.producer == nil {
		h.logger.Warn("Dropping undecodable ledger event, no DLQ configured", "message_key", string(key))
		return nil
	}

	dlqReason := fmt.Sprintf("%s: %s", reason, cause.Error())
	dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason)
	if errors.Is(dlqErr, producers.ErrDLQDisabled) {
		h.logger.Warn("Dropping undecodable ledger event, no DLQ configured", "message_key", string(key))
		return nil
	}
	if dlqErr != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", dlqErr,
			"original_error", cause,
			"message_key", string(key),
		)
		return fmt.Errorf("failed to decode ledger event: %w", cause)
	}

	h.logger.Info("Published undecodable ledger event to DLQ", "message_key", string(key))
	return nil
}

func validEvent(entry *ledger.Entry) bool {
	return entry.ID != uuid.Nil && entry.WalletID != uuid.Nil && entry.Type.IsValid()
}
