// Package money provides the cent-precision Money value type used by wallets and the ledger.
package money

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wallet-ledger/internal/domain/shared"
)

// ErrInvalidCurrencyFormat is returned for codes that are not three ASCII letters
var ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")

// MinimumAmount is the smallest operand accepted by deposit, withdraw and transfer
var MinimumAmount = decimal.New(1, -2)

// MaximumAmount is the largest amount whose cents fit the int64 minor-unit columns
var MaximumAmount = decimal.New(math.MaxInt64, -2)

// Currency is an upper-case three letter currency code
type Currency string

// ParseCurrency normalizes and validates a currency code
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ErrInvalidCurrencyFormat
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrencyFormat
		}
	}
	return Currency(code), nil
}

func (c Currency) String() string {
	return string(c)
}

// Converter translates an amount between currencies, usually through a remote quote service
type Converter interface {
	Convert(ctx context.Context, from, to Currency, amount decimal.Decimal) (decimal.Decimal, error)
}

// ConverterFunc adapts a function to the Converter interface
type ConverterFunc func(ctx context.Context, from, to Currency, amount decimal.Decimal) (decimal.Decimal, error)

func (f ConverterFunc) Convert(ctx context.Context, from, to Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	return f(ctx, from, to, amount)
}

// Money is an amount rounded to cents in a single currency. Operations return new values.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// New creates Money rounded to cents, half away from zero
func New(amount decimal.Decimal, currency Currency) Money {
	return Money{Amount: roundCents(amount), Currency: currency}
}

// NewFromString parses a decimal amount string
func NewFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, shared.WrapError(shared.KindInvalidAmount, fmt.Sprintf("invalid amount %q", amount), err)
	}
	return New(d, currency), nil
}

// FromMinorUnits creates Money from an integer count of cents
func FromMinorUnits(minor int64, currency Currency) Money {
	return Money{Amount: decimal.New(minor, -2), Currency: currency}
}

// Zero returns a zero amount in the currency
func Zero(currency Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// MinorUnits returns the amount as an integer count of cents
func (m Money) MinorUnits() int64 {
	return m.Amount.Shift(2).Round(0).IntPart()
}

// Validate fails with InvalidAmount when the amount is below MinimumAmount or above MaximumAmount
func (m Money) Validate() error {
	if m.Amount.LessThan(MinimumAmount) {
		return shared.NewError(shared.KindInvalidAmount, fmt.Sprintf("amount %s must be at least %s", m.Amount.StringFixed(2), MinimumAmount.StringFixed(2)))
	}
	return m.CheckRange()
}

// CheckRange fails with InvalidAmount when the amount cannot be stored as int64 cents
func (m Money) CheckRange() error {
	if m.Amount.GreaterThan(MaximumAmount) || m.Amount.LessThan(MaximumAmount.Neg()) {
		return shared.NewError(shared.KindInvalidAmount,
			fmt.Sprintf("amount %s exceeds the supported maximum %s", m.Amount.StringFixed(2), MaximumAmount.StringFixed(2)))
	}
	return nil
}

// IsNegative reports whether the amount is below zero
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// Equal compares amount and currency
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// ConvertTo returns the value in another currency. Same-currency conversion never calls conv.
func (m Money) ConvertTo(ctx context.Context, conv Converter, to Currency) (Money, error) {
	if m.Currency == to {
		return m, nil
	}
	if conv == nil {
		return Money{}, shared.NewError(shared.KindConversionUnavailable, "no currency converter configured")
	}

	value, err := conv.Convert(ctx, m.Currency, to, m.Amount)
	if err != nil {
		if shared.KindOf(err) == shared.KindConversionUnavailable {
			return Money{}, err
		}
		return Money{}, shared.WrapError(shared.KindConversionUnavailable,
			fmt.Sprintf("failed to convert %s to %s", m, to), err)
	}
	if value.IsNegative() {
		return Money{}, shared.NewError(shared.KindConversionUnavailable,
			fmt.Sprintf("negative conversion result for %s to %s", m, to))
	}

	return New(value, to), nil
}

// Add validates other, converts it into m's currency and returns the sum
func (m Money) Add(ctx context.Context, conv Converter, other Money) (Money, error) {
	if err := other.Validate(); err != nil {
		return Money{}, err
	}
	converted, err := other.ConvertTo(ctx, conv, m.Currency)
	if err != nil {
		return Money{}, err
	}
	sum := New(m.Amount.Add(converted.Amount), m.Currency)
	if err := sum.CheckRange(); err != nil {
		return Money{}, err
	}
	return sum, nil
}

// Subtract validates other, converts it into m's currency and returns the difference.
// A negative result fails with OverWithdrawal.
func (m Money) Subtract(ctx context.Context, conv Converter, other Money) (Money, error) {
	if err := other.Validate(); err != nil {
		return Money{}, err
	}
	converted, err := other.ConvertTo(ctx, conv, m.Currency)
	if err != nil {
		return Money{}, err
	}

	result := roundCents(m.Amount.Sub(converted.Amount))
	if result.IsNegative() {
		return Money{}, shared.NewError(shared.KindOverWithdrawal,
			fmt.Sprintf("cannot subtract %s from %s", converted, m))
	}
	return Money{Amount: result, Currency: m.Currency}, nil
}

// String renders the amount with two decimals followed by the currency
func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + string(m.Currency)
}

func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
