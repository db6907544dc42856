package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/shared"
)

// Wallet holds a single-currency balance owned by one user
type Wallet struct {
	ID        uuid.UUID   `json:"id"`
	OwnerID   uuid.UUID   `json:"owner_id"`
	Balance   money.Money `json:"balance"`
	Version   int         `json:"version"` // For optimistic locking
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewWallet creates an empty wallet whose currency is fixed for its lifetime
func NewWallet(ownerID uuid.UUID, currency money.Currency) (*Wallet, error) {
	if ownerID == uuid.Nil {
		return nil, ErrMissingOwner
	}
	if _, err := money.ParseCurrency(string(currency)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Wallet{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Balance:   money.Zero(currency),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Currency returns the wallet's fixed currency
func (w *Wallet) Currency() money.Currency {
	return w.Balance.Currency
}

// IsOwnedBy reports whether the wallet belongs to the user
func (w *Wallet) IsOwnedBy(userID uuid.UUID) bool {
	return w.OwnerID == userID
}

// Deposit converts a foreign operand into the wallet currency and credits it.
// It returns the credited amount.
func (w *Wallet) Deposit(ctx context.Context, conv money.Converter, amount money.Money) (money.Money, error) {
	if err := amount.Validate(); err != nil {
		return money.Money{}, err
	}
	credited, err := amount.ConvertTo(ctx, conv, w.Currency())
	if err != nil {
		return money.Money{}, err
	}
	if err := w.Credit(credited); err != nil {
		return money.Money{}, err
	}
	return credited, nil
}

// Withdraw converts a foreign operand into the wallet currency and debits it.
// It returns the debited amount. The balance is unchanged on failure.
func (w *Wallet) Withdraw(ctx context.Context, conv money.Converter, amount money.Money) (money.Money, error) {
	if err := amount.Validate(); err != nil {
		return money.Money{}, err
	}
	debited, err := amount.ConvertTo(ctx, conv, w.Currency())
	if err != nil {
		return money.Money{}, err
	}
	if err := w.Debit(debited); err != nil {
		return money.Money{}, err
	}
	return debited, nil
}

// Credit adds an amount already expressed in the wallet currency.
// It fails with InvalidAmount if the new balance could not be stored.
func (w *Wallet) Credit(amount money.Money) error {
	if amount.Currency != w.Currency() {
		return incompatible(w, amount)
	}
	if err := amount.Validate(); err != nil {
		return err
	}
	balance := money.New(w.Balance.Amount.Add(amount.Amount), w.Currency())
	if err := balance.CheckRange(); err != nil {
		return err
	}
	w.Balance = balance
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// Debit subtracts an amount already expressed in the wallet currency.
// It fails with OverWithdrawal if the balance would go negative.
func (w *Wallet) Debit(amount money.Money) error {
	if amount.Currency != w.Currency() {
		return incompatible(w, amount)
	}
	if err := amount.Validate(); err != nil {
		return err
	}
	if !w.CanDebit(amount) {
		return shared.NewError(shared.KindOverWithdrawal,
			fmt.Sprintf("wallet %s balance %s cannot cover %s", w.ID, w.Balance, amount))
	}
	w.Balance = money.New(w.Balance.Amount.Sub(amount.Amount), w.Currency())
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// CanDebit checks if the balance covers the amount
func (w *Wallet) CanDebit(amount money.Money) bool {
	return amount.Currency == w.Currency() && w.Balance.Amount.GreaterThanOrEqual(amount.Amount)
}

func incompatible(w *Wallet, amount money.Money) error {
	return shared.NewError(shared.KindIncompatibleCurrency,
		fmt.Sprintf("wallet %s holds %s, got %s", w.ID, w.Currency(), amount.Currency))
}
