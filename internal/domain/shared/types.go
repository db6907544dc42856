package shared

// EntryType defines the kind of balance change a ledger entry records
type EntryType string

const (
	EntryTypeDeposit     EntryType = "DEPOSIT"
	EntryTypeWithdraw    EntryType = "WITHDRAW"
	EntryTypeTransferred EntryType = "TRANSFERRED"
	EntryTypeReceived    EntryType = "RECEIVED"
)

// IsValid reports whether t is one of the known entry types
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeDeposit, EntryTypeWithdraw, EntryTypeTransferred, EntryTypeReceived:
		return true
	}
	return false
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
