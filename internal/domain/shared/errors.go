package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the ledger reports to its callers
type ErrorKind string

const (
	KindInvalidAmount            ErrorKind = "INVALID_AMOUNT"
	KindOverWithdrawal           ErrorKind = "OVER_WITHDRAWAL"
	KindIncompatibleCurrency     ErrorKind = "INCOMPATIBLE_CURRENCY"
	KindUnauthorizedWalletAccess ErrorKind = "UNAUTHORIZED_WALLET_ACCESS"
	KindWalletNotFound           ErrorKind = "WALLET_NOT_FOUND"
	KindUserNotFound             ErrorKind = "USER_NOT_FOUND"
	KindUserAlreadyExists        ErrorKind = "USER_ALREADY_EXISTS"
	KindTransactionForSameUser   ErrorKind = "TRANSACTION_FOR_SAME_USER"
	KindEntryNotFound            ErrorKind = "ENTRY_NOT_FOUND"
	KindTransactionNotFound      ErrorKind = "TRANSACTION_NOT_FOUND"
	KindConversionUnavailable    ErrorKind = "CONVERSION_UNAVAILABLE"
	KindCurrencyAlreadyExists    ErrorKind = "CURRENCY_ALREADY_EXISTS"
	KindCurrencyNotFound         ErrorKind = "CURRENCY_NOT_FOUND"
	KindInvalidRequest           ErrorKind = "INVALID_REQUEST"
)

// Sentinels for errors.Is comparisons; any *Error of the same kind matches
var (
	ErrInvalidAmount            = &Error{Kind: KindInvalidAmount, Message: "amount must be at least 0.01"}
	ErrOverWithdrawal           = &Error{Kind: KindOverWithdrawal, Message: "insufficient balance"}
	ErrIncompatibleCurrency     = &Error{Kind: KindIncompatibleCurrency, Message: "currency does not match the sending wallet"}
	ErrUnauthorizedWalletAccess = &Error{Kind: KindUnauthorizedWalletAccess, Message: "wallet access denied"}
	ErrWalletNotFound           = &Error{Kind: KindWalletNotFound, Message: "wallet not found"}
	ErrUserNotFound             = &Error{Kind: KindUserNotFound, Message: "user not found"}
	ErrUserAlreadyExists        = &Error{Kind: KindUserAlreadyExists, Message: "user already exists"}
	ErrTransactionForSameUser   = &Error{Kind: KindTransactionForSameUser, Message: "cannot transfer to the same user or wallet"}
	ErrEntryNotFound            = &Error{Kind: KindEntryNotFound, Message: "ledger entry not found"}
	ErrTransactionNotFound      = &Error{Kind: KindTransactionNotFound, Message: "transaction not found"}
	ErrConversionUnavailable    = &Error{Kind: KindConversionUnavailable, Message: "currency conversion unavailable"}
	ErrCurrencyAlreadyExists    = &Error{Kind: KindCurrencyAlreadyExists, Message: "currency already exists"}
	ErrCurrencyNotFound         = &Error{Kind: KindCurrencyNotFound, Message: "currency not found"}
	ErrInvalidRequest           = &Error{Kind: KindInvalidRequest, Message: "invalid request"}
)

// Error is a ledger failure tagged with its kind
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewError creates an error of the given kind
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates an error of the given kind that keeps its cause
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
