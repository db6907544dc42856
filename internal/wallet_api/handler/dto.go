package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/domain/currency"
	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/passbook"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/domain/wallet"
)

// MoneyDTO renders an amount with exactly two decimals, e.g. {"amount":"100.00","currency":"INR"}
type MoneyDTO struct {
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency" binding:"required"`
}

// toMoney parses a request amount; bad input becomes InvalidRequest or InvalidAmount
func (m MoneyDTO) toMoney() (money.Money, error) {
	cur, err := money.ParseCurrency(m.Currency)
	if err != nil {
		return money.Money{}, shared.WrapError(shared.KindInvalidRequest, err.Error(), err)
	}
	return money.NewFromString(m.Amount, cur)
}

func moneyDTO(m money.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Amount.StringFixed(2), Currency: string(m.Currency)}
}

// RegisterUserRequest represents a request to create a user and a first wallet
type RegisterUserRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Name     string `json:"name" binding:"required,max=128"`
	Currency string `json:"currency" binding:"required"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// RegisterUserResponse is returned by registration
type RegisterUserResponse struct {
	User   UserResponse   `json:"user"`
	Wallet WalletResponse `json:"wallet"`
}

// WalletResponse represents a wallet in API responses
type WalletResponse struct {
	ID        string   `json:"id"`
	OwnerID   string   `json:"owner_id"`
	Balance   MoneyDTO `json:"balance"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// BalanceChangeRequest is the body of deposit and withdraw
type BalanceChangeRequest struct {
	Money MoneyDTO `json:"money"`
}

// BalanceChangeResponse carries the updated wallet and the entry written for it
type BalanceChangeResponse struct {
	Wallet WalletResponse `json:"wallet"`
	Entry  EntryResponse  `json:"entry"`
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID            string   `json:"id"`
	WalletID      string   `json:"wallet_id"`
	TransactionID string   `json:"transaction_id,omitempty"`
	Type          string   `json:"type"`
	Money         MoneyDTO `json:"money"`
	ServiceCharge string   `json:"service_charge,omitempty"`
	Timestamp     int64    `json:"timestamp"`
	CorrelationID string   `json:"correlation_id,omitempty"`
}

// CreateTransferRequest represents a transfer submitted by the sender
type CreateTransferRequest struct {
	SenderWalletID   string   `json:"sender_wallet_id" binding:"required,uuid"`
	ReceiverWalletID string   `json:"receiver_wallet_id" binding:"required,uuid"`
	ReceiverUsername string   `json:"receiver_username" binding:"required"`
	Money            MoneyDTO `json:"money"`
}

// TransactionResponse represents a transfer in API responses
type TransactionResponse struct {
	ID            string        `json:"id"`
	Timestamp     int64         `json:"timestamp"`
	SenderID      string        `json:"sender_id"`
	ReceiverID    string        `json:"receiver_id"`
	SenderEntry   EntryResponse `json:"sender_entry"`
	ReceiverEntry EntryResponse `json:"receiver_entry"`
	CorrelationID string        `json:"correlation_id,omitempty"`
}

// TransferResponse carries the committed transaction and the sender's wallet after it
type TransferResponse struct {
	Transaction  TransactionResponse `json:"transaction"`
	SenderWallet WalletResponse      `json:"sender_wallet"`
}

// PassbookRecordResponse represents one projected passbook line
type PassbookRecordResponse struct {
	EntryID       string   `json:"entry_id"`
	WalletID      string   `json:"wallet_id"`
	TransactionID string   `json:"transaction_id,omitempty"`
	Type          string   `json:"type"`
	Money         MoneyDTO `json:"money"`
	ServiceCharge string   `json:"service_charge,omitempty"`
	Timestamp     int64    `json:"timestamp"`
}

// PassbookQuery represents pagination parameters for the passbook
type PassbookQuery struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=20" binding:"min=1,max=100"`
}

// CurrencyRequest adds or updates one registry value
type CurrencyRequest struct {
	Code  string          `json:"code" binding:"required"`
	Value decimal.Decimal `json:"value"`
}

// UpdateCurrencyRequest is the body of PUT /admin/currencies/:code
type UpdateCurrencyRequest struct {
	Value decimal.Decimal `json:"value"`
}

// UpdateCurrenciesRequest is the body of PUT /admin/currencies
type UpdateCurrenciesRequest struct {
	Currencies []CurrencyRequest `json:"currencies" binding:"required,min=1,dive"`
}

// CurrencyResponse represents a registry value in API responses
type CurrencyResponse struct {
	Code      string `json:"code"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

func mapUserToResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Name:      u.Name,
		Currency:  string(u.Currency),
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func mapWalletToResponse(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID.String(),
		OwnerID:   w.OwnerID.String(),
		Balance:   moneyDTO(w.Balance),
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
		UpdatedAt: w.UpdatedAt.Format(time.RFC3339),
	}
}

func mapWalletsToResponse(wallets []*wallet.Wallet) []WalletResponse {
	out := make([]WalletResponse, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, mapWalletToResponse(w))
	}
	return out
}

func mapEntryToResponse(e *ledger.Entry) EntryResponse {
	resp := EntryResponse{
		ID:            e.ID.String(),
		WalletID:      e.WalletID.String(),
		Type:          string(e.Type),
		Money:         moneyDTO(e.Money),
		Timestamp:     e.Timestamp,
		CorrelationID: e.CorrelationID,
	}
	if e.TransactionID != nil {
		resp.TransactionID = e.TransactionID.String()
	}
	if e.ServiceCharge != nil {
		resp.ServiceCharge = e.ServiceCharge.StringFixed(2)
	}
	return resp
}

func mapEntriesToResponse(entries []*ledger.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, mapEntryToResponse(e))
	}
	return out
}

func mapTransactionToResponse(t *ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID.String(),
		Timestamp:     t.Timestamp,
		SenderID:      t.SenderID.String(),
		ReceiverID:    t.ReceiverID.String(),
		SenderEntry:   mapEntryToResponse(t.SenderEntry),
		ReceiverEntry: mapEntryToResponse(t.ReceiverEntry),
		CorrelationID: t.CorrelationID,
	}
}

func mapTransactionsToResponse(txs []*ledger.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, mapTransactionToResponse(t))
	}
	return out
}

func mapPassbookToResponse(records []*passbook.Record) []PassbookRecordResponse {
	out := make([]PassbookRecordResponse, 0, len(records))
	for _, r := range records {
		resp := PassbookRecordResponse{
			EntryID:       r.EntryID.String(),
			WalletID:      r.WalletID.String(),
			Type:          string(r.Type),
			Money:         MoneyDTO{Amount: r.Amount, Currency: r.Currency},
			ServiceCharge: r.ServiceCharge,
			Timestamp:     r.Timestamp,
		}
		if r.TransactionID != nil {
			resp.TransactionID = r.TransactionID.String()
		}
		out = append(out, resp)
	}
	return out
}

func mapCurrencyToResponse(c *currency.Currency) CurrencyResponse {
	return CurrencyResponse{
		Code:      string(c.Code),
		Value:     c.Value.String(),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func mapCurrenciesToResponse(currencies []*currency.Currency) []CurrencyResponse {
	out := make([]CurrencyResponse, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, mapCurrencyToResponse(c))
	}
	return out
}
