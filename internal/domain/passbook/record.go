// Package passbook defines the per-user read model projected from ledger events.
package passbook

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/shared"
)

// Record is one ledger entry as shown in a user's passbook
type Record struct {
	EntryID       uuid.UUID        `json:"entry_id" bson:"_id"`
	OwnerID       uuid.UUID        `json:"owner_id" bson:"owner_id"`
	WalletID      uuid.UUID        `json:"wallet_id" bson:"wallet_id"`
	TransactionID *uuid.UUID       `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	Type          shared.EntryType `json:"type" bson:"type"`
	Amount        string           `json:"amount" bson:"amount"`
	AmountMinor   int64            `json:"amount_minor" bson:"amount_minor"`
	Currency      string           `json:"currency" bson:"currency"`
	ServiceCharge string           `json:"service_charge,omitempty" bson:"service_charge,omitempty"`
	Timestamp     int64            `json:"timestamp" bson:"timestamp"`
	CorrelationID string           `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at" bson:"created_at"`
	ProjectedAt   time.Time        `json:"projected_at" bson:"projected_at"`
}

// FromEntry flattens a ledger entry into a passbook record
func FromEntry(entry *ledger.Entry) *Record {
	record := &Record{
		EntryID:       entry.ID,
		OwnerID:       entry.OwnerID,
		WalletID:      entry.WalletID,
		TransactionID: entry.TransactionID,
		Type:          entry.Type,
		Amount:        entry.Money.Amount.StringFixed(2),
		AmountMinor:   entry.Money.MinorUnits(),
		Currency:      string(entry.Money.Currency),
		Timestamp:     entry.Timestamp,
		CorrelationID: entry.CorrelationID,
		CreatedAt:     entry.CreatedAt,
		ProjectedAt:   time.Now().UTC(),
	}
	if entry.ServiceCharge != nil {
		record.ServiceCharge = entry.ServiceCharge.StringFixed(2)
	}
	return record
}

// Repository stores the passbook projection
type Repository interface {
	// Upsert is idempotent per entry id so redelivered events are harmless
	Upsert(ctx context.Context, record *Record) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Record, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}
