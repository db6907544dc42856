package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/shared"
)

// Entry is an immutable audit record of one balance change on one wallet
type Entry struct {
	ID            uuid.UUID        `json:"id"`
	WalletID      uuid.UUID        `json:"wallet_id"`
	OwnerID       uuid.UUID        `json:"owner_id"`
	TransactionID *uuid.UUID       `json:"transaction_id,omitempty"`
	Type          shared.EntryType `json:"type"`
	Money         money.Money      `json:"money"`
	ServiceCharge *decimal.Decimal `json:"service_charge,omitempty"` // In Money's currency
	Timestamp     int64            `json:"timestamp"`                // Unix milliseconds
	CorrelationID string           `json:"correlation_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// NewEntry records a deposit or withdrawal on a wallet
func NewEntry(walletID, ownerID uuid.UUID, entryType shared.EntryType, amount money.Money, timestamp int64) *Entry {
	return &Entry{
		ID:        uuid.New(),
		WalletID:  walletID,
		OwnerID:   ownerID,
		Type:      entryType,
		Money:     amount,
		Timestamp: timestamp,
		CreatedAt: time.UnixMilli(timestamp).UTC(),
	}
}

// NowMillis returns the current time as Unix milliseconds, the resolution of ledger timestamps
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
