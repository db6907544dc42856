package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wallet-ledger/internal/domain/outbox"
	"github.com/wallet-ledger/internal/platform/messaging/producers"
)

// ErrUnpublishable marks a message whose payload can never become a ledger event
var ErrUnpublishable = errors.New("outbox payload is not a ledger entry")

// LedgerPublisher moves one outbox message onto the ledger event topic
type LedgerPublisher interface {
	PublishEntry(ctx context.Context, message *outbox.Message) error
}

// LedgerPublisherImpl implements LedgerPublisher
type LedgerPublisherImpl struct {
	outboxRepo outbox.Repository
	publisher  producers.MessagePublisher
	logger     *slog.Logger
}

func NewLedgerPublisher(
	outboxRepo outbox.Repository,
	publisher producers.MessagePublisher,
	logger *slog.Logger,
) LedgerPublisher {
	return &LedgerPublisherImpl{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

// PublishEntry publishes the stored payload on the wallet's partition and marks the message processed.
// An undecodable payload is marked failed at once and reported as ErrUnpublishable.
func (p *LedgerPublisherImpl) PublishEntry(ctx context.Context, message *outbox.Message) error {
	entry, err := message.LedgerEntry()
	if err != nil {
		p.logger.Error("Outbox payload is not a ledger entry",
			"outbox_id", message.ID, "entry_id", message.EntryID.String(), "error", err,
		)
		if markErr := p.outboxRepo.MarkFailed(ctx, message.ID); markErr != nil {
			p.logger.Error("Failed to mark undecodable outbox message", "outbox_id", message.ID, "error", markErr)
		}
		return fmt.Errorf("%w: outbox %d: %v", ErrUnpublishable, message.ID, err)
	}

	logger := p.logger.With("outbox_id", message.ID, "entry_id", entry.ID.String())
	if entry.CorrelationID != "" {
		logger = logger.With("correlation_id", entry.CorrelationID)
	}

	event := producers.LedgerEvent{
		Key:           message.PartitionKey(),
		Payload:       message.Payload,
		EntryType:     string(entry.Type),
		CorrelationID: entry.CorrelationID,
	}
	if err := p.publisher.Publish(ctx, event); err != nil {
		return err
	}

	if err := p.outboxRepo.MarkProcessed(ctx, message.ID); err != nil {
		// the message stays pending and will be published again
		logger.Error("Ledger event published but outbox message not marked processed", "error", err)
		return fmt.Errorf("event for entry %s published, but failed to mark outbox %d as PROCESSED: %w", entry.ID, message.ID, err)
	}

	logger.Info("Ledger event published",
		"wallet_id", entry.WalletID.String(),
		"type", string(entry.Type),
		"timestamp", entry.Timestamp,
	)
	return nil
}
