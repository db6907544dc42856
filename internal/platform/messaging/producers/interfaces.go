package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Header keys set on every ledger event
const (
	HeaderContentType   = "content-type"
	HeaderEntryType     = "entry-type"
	HeaderCorrelationID = "correlation-id"
	HeaderDLQReason     = "dlq-reason"
)

// LedgerEvent is one encoded ledger entry and the metadata carried as headers
type LedgerEvent struct {
	Key           string // wallet id, fixes the partition
	Payload       []byte
	EntryType     string
	CorrelationID string
}

// MessagePublisher publishes events to the ledger topic
type MessagePublisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
	Close() error
}

// DeadLetterPublisher parks ledger events the projector could not decode
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter is the subset of *kafka.Writer the producers use
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
