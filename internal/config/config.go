// Package config provides configuration structures and validation for the wallet ledger.
// Both binaries share one Config; each loads its own .env file and environment overrides.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the complete configuration of a wallet ledger process.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	FX          FXConfig
	Auth        AuthConfig
	Transfer    TransferConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	LedgerTopic       string // Topic carrying ledger entry events
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// MongoDBConfig contains MongoDB configuration for the passbook read model
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RedisConfig contains the Redis connection used for idempotency keys
type RedisConfig struct {
	URL            string
	IdempotencyTTL time.Duration
}

// FXConfig contains settings for the remote currency conversion service
type FXConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxIdleConns int
}

// AuthConfig contains bearer token verification settings
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

// TransferConfig contains the cross-currency fee policy and retry bound
type TransferConfig struct {
	FeeAmount   decimal.Decimal // Flat service charge, quoted in FeeCurrency
	FeeCurrency string
	MaxRetries  int // Attempts on optimistic lock conflicts
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of concurrent transfers
}

// validate collects every invalid value so a misconfigured process reports all problems at once
func (c *Config) validate() error {
	var validationErrors []string

	// Server
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.LedgerTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_LEDGER_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}

	// PostgreSQL
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// MongoDB
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Redis
	if c.Redis.URL == "" {
		validationErrors = append(validationErrors, "REDIS_URL is required")
	}
	if c.Redis.IdempotencyTTL <= 0 {
		validationErrors = append(validationErrors, "IDEMPOTENCY_TTL must be greater than 0")
	}

	// FX
	if c.FX.BaseURL == "" {
		validationErrors = append(validationErrors, "FX_BASE_URL is required")
	}
	if c.FX.Timeout <= 0 {
		validationErrors = append(validationErrors, "FX_TIMEOUT must be greater than 0")
	}
	if c.FX.MaxIdleConns <= 0 {
		validationErrors = append(validationErrors, "FX_MAX_IDLE_CONNS must be greater than 0")
	}

	// Auth
	if len(c.Auth.JWTSecret) < 16 {
		validationErrors = append(validationErrors, "AUTH_JWT_SECRET must be at least 16 characters")
	}

	// Transfer
	if !c.Transfer.FeeAmount.IsPositive() {
		validationErrors = append(validationErrors, "TRANSFER_FEE_AMOUNT must be greater than 0")
	}
	if len(c.Transfer.FeeCurrency) != 3 {
		validationErrors = append(validationErrors, "TRANSFER_FEE_CURRENCY must be a 3-letter currency code")
	}
	if c.Transfer.MaxRetries <= 0 {
		validationErrors = append(validationErrors, "TRANSFER_MAX_RETRIES must be greater than 0")
	}

	// Outbox
	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	// WorkerPool
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
