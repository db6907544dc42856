package outbox

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/domain/shared"
)

// Repository stores ledger events next to the entries that produced them
type Repository interface {
	// CreateAll queues the messages in one statement and assigns their IDs
	CreateAll(ctx context.Context, messages []*Message) error
	GetPending(ctx context.Context, limit int) ([]*Message, error)
	MarkProcessed(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64) error

	// RecordFailedAttempt counts a failed publish and moves the message to
	// FAILED_TO_PUBLISH once maxAttempts is reached. It returns the resulting status.
	RecordFailedAttempt(ctx context.Context, id int64, maxAttempts int) (shared.OutboxStatus, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrMessageNotFound indicates missing outbox message
type ErrMessageNotFound struct {
	ID int64
}

func (e ErrMessageNotFound) Error() string {
	return "outbox message not found: " + strconv.FormatInt(e.ID, 10)
}

// ErrDuplicateMessage indicates an entry was queued twice
type ErrDuplicateMessage struct {
	EntryIDs []uuid.UUID
}

func (e ErrDuplicateMessage) Error() string {
	ids := make([]string, len(e.EntryIDs))
	for i, id := range e.EntryIDs {
		ids[i] = id.String()
	}
	return "duplicate outbox message for entries: " + strings.Join(ids, ", ")
}
