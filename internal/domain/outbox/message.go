package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/shared"
)

// Message carries one ledger entry from the write transaction to the event bus
type Message struct {
	ID            int64               `json:"id"`
	EntryID       uuid.UUID           `json:"entry_id"`
	WalletID      uuid.UUID           `json:"wallet_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewMessages serializes each entry as a pending message, in order
func NewMessages(entries ...*ledger.Entry) ([]*Message, error) {
	now := time.Now().UTC()
	messages := make([]*Message, 0, len(entries))
	for _, entry := range entries {
		payload, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to encode entry %s: %w", entry.ID, err)
		}
		messages = append(messages, &Message{
			EntryID:   entry.ID,
			WalletID:  entry.WalletID,
			Payload:   payload,
			Status:    shared.OutboxStatusPending,
			CreatedAt: now,
		})
	}
	return messages, nil
}

// PartitionKey keeps all events of one wallet on one partition, in order
func (m *Message) PartitionKey() string {
	return m.WalletID.String()
}

// LedgerEntry decodes the payload and checks it belongs to this message
func (m *Message) LedgerEntry() (*ledger.Entry, error) {
	var entry ledger.Entry
	if err := json.Unmarshal(m.Payload, &entry); err != nil {
		return nil, err
	}
	if entry.ID != m.EntryID {
		return nil, fmt.Errorf("payload carries entry %s, expected %s", entry.ID, m.EntryID)
	}
	return &entry, nil
}
