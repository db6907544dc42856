package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wallet-ledger/internal/config"
)

const (
	topicReadAttempts = 5
	topicReadBackoff  = 2 * time.Second
)

// topicAdmin is the subset of *kafka.Conn used to provision topics
type topicAdmin interface {
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	CreateTopics(topics ...kafka.TopicConfig) error
}

// ensureTopic creates the topic unless its partitions can be read.
// Partition reads are retried while a fresh broker has no metadata for the topic yet.
func ensureTopic(admin topicAdmin, topic string, numPartitions, replicationFactor int, backoff time.Duration, log *slog.Logger) error {
	var (
		partitions []kafka.Partition
		err        error
	)

	for attempt := 1; attempt <= topicReadAttempts; attempt++ {
		partitions, err = admin.ReadPartitions(topic)
		if err == nil && len(partitions) > 0 {
			log.Info("Kafka topic already exists", "topic", topic, "partitions", len(partitions))
			return nil
		}
		if attempt < topicReadAttempts {
			log.Warn("Failed to read partitions, retrying", "topic", topic, "attempt", attempt, "error", err)
			time.Sleep(backoff)
		}
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     max(numPartitions, 1),
		ReplicationFactor: max(replicationFactor, 1),
	}

	log.Info("Creating Kafka topic",
		"topic", topic,
		"partitions", topicConfig.NumPartitions,
		"replication_factor", topicConfig.ReplicationFactor,
		"last_read_error", err)
	if err := admin.CreateTopics(topicConfig); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topic, err)
	}
	return nil
}

// dialAndEnsureTopic opens a short-lived admin connection to provision topic
func dialAndEnsureTopic(cfg *config.KafkaConfig, topic string, log *slog.Logger) error {
	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	return ensureTopic(conn, topic, cfg.NumPartitions, cfg.ReplicationFactor, topicReadBackoff, log)
}
