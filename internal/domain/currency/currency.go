// Package currency holds the registry of currencies users may register with.
package currency

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/wallet-ledger/internal/domain/money"
)

// ErrInvalidValue is returned for non-positive currency values
var ErrInvalidValue = errors.New("currency value must be positive")

// Currency is a registered currency and its unit value relative to the reference currency
type Currency struct {
	Code      money.Currency  `json:"code"`
	Value     decimal.Decimal `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// New validates a registry value
func New(code string, value decimal.Decimal) (*Currency, error) {
	cur, err := money.ParseCurrency(code)
	if err != nil {
		return nil, err
	}
	if !value.IsPositive() {
		return nil, ErrInvalidValue
	}
	return &Currency{Code: cur, Value: value, UpdatedAt: time.Now().UTC()}, nil
}

// Repository manages the currency registry
type Repository interface {
	Create(ctx context.Context, currency *Currency) error
	Get(ctx context.Context, code money.Currency) (*Currency, error)
	List(ctx context.Context) ([]*Currency, error)

	// Update fails with CurrencyNotFound if the code is not registered
	Update(ctx context.Context, currency *Currency) error
	WithTx(tx pgx.Tx) Repository
}
