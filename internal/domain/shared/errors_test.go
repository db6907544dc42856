package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := NewError(KindWalletNotFound, "wallet 42 not found")

	assert.True(t, errors.Is(err, ErrWalletNotFound))
	assert.False(t, errors.Is(err, ErrUserNotFound))

	wrapped := fmt.Errorf("failed to load wallet: %w", err)
	assert.True(t, errors.Is(wrapped, ErrWalletNotFound))
	assert.Equal(t, KindWalletNotFound, KindOf(wrapped))
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := WrapError(KindConversionUnavailable, "fx service unreachable", cause)

	assert.True(t, errors.Is(err, ErrConversionUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "CONVERSION_UNAVAILABLE: fx service unreachable: dial tcp: connection refused", err.Error())
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("boom")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestEntryType_IsValid(t *testing.T) {
	assert.True(t, EntryTypeReceived.IsValid())
	assert.False(t, EntryType("REFUND").IsValid())
}
