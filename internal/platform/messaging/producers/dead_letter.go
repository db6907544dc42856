package producers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wallet-ledger/internal/config"
)

// ErrDLQDisabled is returned when publishing through a producer that was never configured
var ErrDLQDisabled = errors.New("DLQ producer not initialized")

// dlqEnvelope is the DLQ record of a ledger event the projector rejected
type dlqEnvelope struct {
	SourceTopic   string `json:"source_topic"`
	OriginalKey   string `json:"original_key"`
	OriginalValue string `json:"original_value"`
	DLQReason     string `json:"dlq_reason"`
	RejectedAt    string `json:"rejected_at"`
}

// DLQProducer parks rejected ledger events, keyed like the original so one wallet's rejects stay ordered
type DLQProducer struct {
	logger      *slog.Logger
	writer      KafkaWriter
	dlqTopic    string
	sourceTopic string
}

// NewDLQProducer returns a nil producer if cfg.DLQTopic is empty
func NewDLQProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*DLQProducer, error) {
	if cfg.DLQTopic == "" {
		logger.Info("DLQ topic is not configured, rejected ledger events will only be logged")
		return nil, nil
	}

	if err := dialAndEnsureTopic(cfg, cfg.DLQTopic, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure DLQ topic %s exists: %w", cfg.DLQTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.DLQTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &DLQProducer{
		logger:      logger,
		writer:      writer,
		dlqTopic:    cfg.DLQTopic,
		sourceTopic: cfg.LedgerTopic,
	}, nil
}

func (p *DLQProducer) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	if p == nil || p.writer == nil {
		return ErrDLQDisabled
	}

	value, err := json.Marshal(dlqEnvelope{
		SourceTopic:   p.sourceTopic,
		OriginalKey:   key,
		OriginalValue: string(originalMessageValue),
		DLQReason:     reason,
		RejectedAt:    time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderDLQReason, Value: []byte(reason)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message to DLQ",
			"topic", p.dlqTopic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to DLQ %s: %w", p.dlqTopic, err)
	}

	p.logger.Warn("Ledger event parked on DLQ",
		"topic", p.dlqTopic,
		"source_topic", p.sourceTopic,
		"key", key,
		"reason", reason,
	)
	return nil
}

func (p *DLQProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	p.logger.Info("Closing DLQ producer", "topic", p.dlqTopic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close DLQ writer for topic %s: %w", p.dlqTopic, err)
	}
	return nil
}
