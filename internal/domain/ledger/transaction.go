package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/shared"
)

// Transaction pairs the sender and receiver entries of one transfer
type Transaction struct {
	ID            uuid.UUID `json:"id"`
	Timestamp     int64     `json:"timestamp"`
	SenderID      uuid.UUID `json:"sender_id"`
	ReceiverID    uuid.UUID `json:"receiver_id"`
	SenderEntry   *Entry    `json:"sender_entry"`
	ReceiverEntry *Entry    `json:"receiver_entry"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TransferParams describes an already validated and priced transfer
type TransferParams struct {
	SenderID         uuid.UUID
	ReceiverID       uuid.UUID
	SenderWalletID   uuid.UUID
	ReceiverWalletID uuid.UUID
	Debit            money.Money  // Sender currency
	Credit           money.Money  // Receiver currency, after the fee
	ServiceCharge    *money.Money // Receiver currency, nil for same-currency transfers
	Timestamp        int64
	CorrelationID    string
}

// NewTransfer builds a TRANSFERRED entry for the sender, a RECEIVED entry for the
// receiver and the transaction linking them, all sharing one timestamp
func NewTransfer(p TransferParams) *Transaction {
	txID := uuid.New()

	sent := NewEntry(p.SenderWalletID, p.SenderID, shared.EntryTypeTransferred, p.Debit, p.Timestamp)
	sent.TransactionID = &txID
	sent.CorrelationID = p.CorrelationID

	received := NewEntry(p.ReceiverWalletID, p.ReceiverID, shared.EntryTypeReceived, p.Credit, p.Timestamp)
	received.TransactionID = &txID
	received.CorrelationID = p.CorrelationID
	if p.ServiceCharge != nil {
		fee := p.ServiceCharge.Amount
		received.ServiceCharge = &fee
	}

	return &Transaction{
		ID:            txID,
		Timestamp:     p.Timestamp,
		SenderID:      p.SenderID,
		ReceiverID:    p.ReceiverID,
		SenderEntry:   sent,
		ReceiverEntry: received,
		CorrelationID: p.CorrelationID,
		CreatedAt:     time.UnixMilli(p.Timestamp).UTC(),
	}
}

// Entries returns the sender and receiver entries in that order
func (t *Transaction) Entries() []*Entry {
	return []*Entry{t.SenderEntry, t.ReceiverEntry}
}

// Involves reports whether the user sent or received the transfer
func (t *Transaction) Involves(userID uuid.UUID) bool {
	return t.SenderID == userID || t.ReceiverID == userID
}
