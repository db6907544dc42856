package outbox_poller

import (
	"context"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/wallet-ledger/internal/domain/outbox"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/platform/messaging/producers"
)

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) CreateAll(ctx context.Context, messages []*outbox.Message) error {
	return m.Called(ctx, messages).Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) MarkProcessed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) MarkFailed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) RecordFailedAttempt(ctx context.Context, id int64, maxAttempts int) (shared.OutboxStatus, error) {
	args := m.Called(ctx, id, maxAttempts)
	return args.Get(0).(shared.OutboxStatus), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, event producers.LedgerEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockMessagePublisher) Close() error {
	return m.Called().Error(0)
}

type MockLedgerPublisher struct {
	mock.Mock
}

func (m *MockLedgerPublisher) PublishEntry(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
