package consumers

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wallet-ledger/internal/config"
)

type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, topic string, groupID string, handler MessageHandler) error
	Close() error
}

// messageReader is the subset of *kafka.Reader the consumer drives
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer reads the ledger topic with explicit commits.
// An offset is committed only after the handler accepted the message. A failing message
// is retried in place, so later entries of the same partition never overtake it.
type KafkaConsumer struct {
	reader     messageReader
	logger     *slog.Logger
	retryDelay time.Duration
	done       chan struct{}
}

func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == kafka.LastOffset {
		startOffset = kafka.LastOffset
	}

	return &KafkaConsumer{
		logger: logger,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     []string{cfg.Brokers},
			Topic:       cfg.LedgerTopic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: startOffset,
		}),
		retryDelay: time.Second,
		done:       make(chan struct{}),
	}
}

// Subscribe starts the fetch loop in the background and returns immediately
func (c *KafkaConsumer) Subscribe(ctx context.Context, topic string, groupID string, handler MessageHandler) error {
	c.logger.Info("Subscribed to Kafka topic",
		"topic", topic,
		"group_id", groupID,
	)

	go func() {
		defer close(c.done)
		for ctx.Err() == nil {
			c.consumeOne(ctx, handler)
		}
		c.logger.Info("Context canceled, stopping consumer",
			"topic", topic,
			"group_id", groupID,
		)
	}()

	return nil
}

func (c *KafkaConsumer) consumeOne(ctx context.Context, handler MessageHandler) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Error("Failed to fetch message from Kafka", "error", err)
		c.wait(ctx)
		return
	}

	log := c.logger.With(
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"key", string(msg.Key),
	)
	log.Debug("Received message from Kafka")

	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg.Key, msg.Value)
		if err == nil {
			break
		}
		log.Error("Failed to process message, retrying before commit", "attempt", attempt, "error", err)
		if !c.wait(ctx) {
			// uncommitted, the group redelivers it after restart
			return
		}
	}

	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		log.Error("Failed to commit message after successful processing", "error", err)
		return
	}
	log.Debug("Message committed successfully")
}

// wait sleeps for retryDelay and reports false if ctx ended first
func (c *KafkaConsumer) wait(ctx context.Context) bool {
	timer := time.NewTimer(c.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Done is closed once the fetch loop has exited
func (c *KafkaConsumer) Done() <-chan struct{} {
	return c.done
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
