package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/domain/outbox"
	"github.com/wallet-ledger/internal/domain/shared"
)

// Poller drains pending outbox messages onto the event bus
type Poller struct {
	outboxRepo       outbox.Repository
	ledgerPublisher  LedgerPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	ledgerPublisher LedgerPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		ledgerPublisher:  ledgerPublisher,
		logger:           logger.With("component", "outbox_poller"),
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start polls until ctx is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopping")
			return
		case <-ticker.C:
			if err := p.processPendingMessages(ctx); err != nil && !errors.Is(err, context.Canceled) {
				p.logger.Error("Outbox batch aborted", "error", err)
			}
		}
	}
}

// batchResult counts what happened to one polled batch
type batchResult struct {
	published int
	retrying  int
	exhausted int
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	var result batchResult
	for _, msg := range messages {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.publishOne(ctx, msg, &result)
	}

	p.logger.Info("Outbox batch processed",
		"fetched", len(messages),
		"published", result.published,
		"retrying", result.retrying,
		"exhausted", result.exhausted,
	)
	return nil
}

func (p *Poller) publishOne(ctx context.Context, msg *outbox.Message, result *batchResult) {
	err := p.ledgerPublisher.PublishEntry(ctx, msg)
	switch {
	case err == nil:
		result.published++
		return
	case errors.Is(err, ErrUnpublishable):
		result.exhausted++
		return
	}

	log := p.logger.With("outbox_id", msg.ID, "entry_id", msg.EntryID.String())
	log.Warn("Failed to publish ledger event", "attempts_before", msg.Attempts, "error", err)

	status, err := p.outboxRepo.RecordFailedAttempt(ctx, msg.ID, p.maxRetryAttempts)
	if err != nil {
		log.Error("Failed to record publish attempt", "error", err)
		result.retrying++
		return
	}
	if status == shared.OutboxStatusFailedToPublish {
		log.Error("Ledger event exhausted its publish attempts", "max_retry_attempts", p.maxRetryAttempts)
		result.exhausted++
		return
	}
	result.retrying++
}
