package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/wallet-ledger/internal/config"
)

// LedgerEventProducer publishes ledger entry events keyed by wallet id.
// Writes are synchronous: Publish returns only after the broker acknowledged the event.
type LedgerEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

func NewLedgerEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*LedgerEventProducer, error) {
	if cfg.LedgerTopic == "" {
		return nil, fmt.Errorf("kafka ledger topic is not configured")
	}

	if err := dialAndEnsureTopic(cfg, cfg.LedgerTopic, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger topic %s exists: %w", cfg.LedgerTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.LedgerTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &LedgerEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.LedgerTopic,
	}, nil
}

// Publish writes the event and waits for every in-sync replica to acknowledge it
func (p *LedgerEventProducer) Publish(ctx context.Context, event LedgerEvent) error {
	if len(event.Payload) == 0 {
		return fmt.Errorf("ledger event for key %q has no payload", event.Key)
	}

	if err := p.writer.WriteMessages(ctx, ledgerMessage(event)); err != nil {
		p.logger.Error("Failed to publish ledger event",
			"topic", p.topic,
			"key", event.Key,
			"entry_type", event.EntryType,
			"correlation_id", event.CorrelationID,
			"error", err,
		)
		return fmt.Errorf("failed to publish ledger event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published ledger event", "topic", p.topic, "key", event.Key, "entry_type", event.EntryType)
	return nil
}

func ledgerMessage(event LedgerEvent) kafka.Message {
	headers := []kafka.Header{
		{Key: HeaderContentType, Value: []byte("application/json")},
		{Key: HeaderEntryType, Value: []byte(event.EntryType)},
	}
	if event.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: HeaderCorrelationID, Value: []byte(event.CorrelationID)})
	}
	return kafka.Message{
		Key:     []byte(event.Key),
		Value:   event.Payload,
		Headers: headers,
	}
}

func (p *LedgerEventProducer) Close() error {
	p.logger.Info("Closing ledger event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
