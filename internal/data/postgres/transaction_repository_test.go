package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/shared"
)

func newTransactionRepo(t *testing.T) (*TransactionRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &TransactionRepository{querier: mock, logger: newTestLogger()}, mock
}

func testTransaction(t *testing.T) *ledger.Transaction {
	t.Helper()
	fee := money.New(decimal.RequireFromString("10"), "INR")
	return ledger.NewTransfer(ledger.TransferParams{
		SenderID:         uuid.New(),
		ReceiverID:       uuid.New(),
		SenderWalletID:   uuid.New(),
		ReceiverWalletID: uuid.New(),
		Debit:            money.New(decimal.RequireFromString("100"), "INR"),
		Credit:           money.New(decimal.RequireFromString("90"), "INR"),
		ServiceCharge:    &fee,
		Timestamp:        1_700_000_123_456,
		CorrelationID:    "corr-tx",
	})
}

func transactionRowColumns() []string {
	cols := []string{"id", "entry_timestamp", "sender_id", "receiver_id", "correlation_id", "created_at"}
	cols = append(cols, entryRowColumns...)
	return append(cols, entryRowColumns...)
}

func transactionValues(tx *ledger.Transaction) []any {
	values := []any{tx.ID, tx.Timestamp, tx.SenderID, tx.ReceiverID, tx.CorrelationID, tx.CreatedAt}
	values = append(values, entryValues(tx.SenderEntry)...)
	return append(values, entryValues(tx.ReceiverEntry)...)
}

func TestTransactionRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo, mock := newTransactionRepo(t)
	tx := testTransaction(t)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(insertTransactionQuery)).
			WithArgs(tx.ID, tx.Timestamp, tx.SenderID, tx.ReceiverID, tx.SenderEntry.ID, tx.ReceiverEntry.ID,
				tx.CorrelationID, tx.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, repo.Create(ctx, tx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		dbErr := errors.New("fk violation")
		mock.ExpectExec(regexp.QuoteMeta(insertTransactionQuery)).
			WithArgs(tx.ID, tx.Timestamp, tx.SenderID, tx.ReceiverID, tx.SenderEntry.ID, tx.ReceiverEntry.ID,
				tx.CorrelationID, tx.CreatedAt).
			WillReturnError(dbErr)

		err := repo.Create(ctx, tx)
		assert.ErrorIs(t, err, dbErr)
		assert.ErrorContains(t, err, "failed to create transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_ListByUser(t *testing.T) {
	ctx := context.Background()
	repo, mock := newTransactionRepo(t)
	expected := testTransaction(t)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(selectTransactionsByUserQuery)).
			WithArgs(expected.ReceiverID).
			WillReturnRows(pgxmock.NewRows(transactionRowColumns()).AddRow(transactionValues(expected)...))

		txs, err := repo.ListByUser(ctx, expected.ReceiverID)
		require.NoError(t, err)
		require.Len(t, txs, 1)

		got := txs[0]
		assert.Equal(t, expected.ID, got.ID)
		assert.Equal(t, expected.SenderID, got.SenderID)
		assert.Equal(t, expected.ReceiverID, got.ReceiverID)
		assertSameEntry(t, expected.SenderEntry, got.SenderEntry)
		assertSameEntry(t, expected.ReceiverEntry, got.ReceiverEntry)
		assert.Nil(t, got.SenderEntry.ServiceCharge)
		require.NotNil(t, got.ReceiverEntry.ServiceCharge)
		assert.True(t, decimal.RequireFromString("10").Equal(*got.ReceiverEntry.ServiceCharge))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		dbErr := errors.New("timeout")
		mock.ExpectQuery(regexp.QuoteMeta(selectTransactionsByUserQuery)).
			WithArgs(expected.SenderID).
			WillReturnError(dbErr)

		txs, err := repo.ListByUser(ctx, expected.SenderID)
		assert.Nil(t, txs)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_GetByUserAndTimestamp(t *testing.T) {
	ctx := context.Background()
	repo, mock := newTransactionRepo(t)
	expected := testTransaction(t)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(selectTransactionByUserAndTimestampQuery)).
			WithArgs(expected.SenderID, expected.Timestamp).
			WillReturnRows(pgxmock.NewRows(transactionRowColumns()).AddRow(transactionValues(expected)...))

		got, err := repo.GetByUserAndTimestamp(ctx, expected.SenderID, expected.Timestamp)
		require.NoError(t, err)
		assert.Equal(t, expected.ID, got.ID)
		assert.Equal(t, expected.Timestamp, got.Timestamp)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(selectTransactionByUserAndTimestampQuery)).
			WithArgs(expected.SenderID, int64(1)).
			WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetByUserAndTimestamp(ctx, expected.SenderID, 1)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, shared.ErrTransactionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
