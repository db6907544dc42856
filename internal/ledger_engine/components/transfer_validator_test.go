package components

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/ledger_engine/service"
)

type validatorFixture struct {
	users           *MockUserRepo
	wallets         *MockWalletRepo
	sender          *user.User
	receiver        *user.User
	sendingWallet   *wallet.Wallet
	receivingWallet *wallet.Wallet
	principal       user.Principal
	request         *service.TransferRequest
}

func newValidatorFixture() *validatorFixture {
	sender := &user.User{ID: uuid.New(), Username: "alice", Currency: "INR", Role: user.RoleUser}
	receiver := &user.User{ID: uuid.New(), Username: "bob", Currency: "USD", Role: user.RoleUser}
	sendingWallet := testWallet(sender.ID, "300", "INR")
	receivingWallet := testWallet(receiver.ID, "0", "USD")

	return &validatorFixture{
		users:           new(MockUserRepo),
		wallets:         new(MockWalletRepo),
		sender:          sender,
		receiver:        receiver,
		sendingWallet:   sendingWallet,
		receivingWallet: receivingWallet,
		principal:       user.Principal{UserID: sender.ID, Username: sender.Username, Role: user.RoleUser},
		request: &service.TransferRequest{
			SenderWalletID:   sendingWallet.ID,
			ReceiverWalletID: receivingWallet.ID,
			ReceiverUsername: receiver.Username,
			Amount:           mustMoney("100", "INR"),
			CorrelationID:    "corr-v",
		},
	}
}

func (f *validatorFixture) expectParties() {
	f.users.On("GetByID", context.Background(), f.sender.ID).Return(f.sender, nil)
	f.users.On("GetByUsername", context.Background(), f.receiver.Username).Return(f.receiver, nil)
}

func (f *validatorFixture) expectWallets() {
	f.wallets.On("GetByIDAndOwner", context.Background(), f.sendingWallet.ID, f.sender.ID).Return(f.sendingWallet, nil)
	f.wallets.On("GetByIDAndOwner", context.Background(), f.receivingWallet.ID, f.receiver.ID).Return(f.receivingWallet, nil)
}

func TestTransferValidator_Validate_BuildsPlan(t *testing.T) {
	f := newValidatorFixture()
	f.expectParties()
	f.expectWallets()

	validator := NewTransferValidator(f.users, f.wallets, newTestLogger())
	plan, err := validator.Validate(context.Background(), f.principal, f.request)
	require.NoError(t, err)

	assert.Equal(t, f.sender.ID, plan.SenderID)
	assert.Equal(t, f.receiver.ID, plan.ReceiverID)
	assert.Equal(t, f.sendingWallet.ID, plan.SenderWalletID)
	assert.Equal(t, f.receivingWallet.ID, plan.ReceiverWalletID)
	assert.Equal(t, f.sendingWallet.Currency(), plan.SenderCurrency)
	assert.Equal(t, f.receivingWallet.Currency(), plan.ReceiverCurrency)
	assert.True(t, plan.Debit.Equal(f.request.Amount))
	assert.True(t, plan.CrossCurrency())
	assert.Nil(t, plan.ServiceCharge)
	assert.Equal(t, "corr-v", plan.CorrelationID)
	assert.Positive(t, plan.Timestamp)
	f.users.AssertExpectations(t)
	f.wallets.AssertExpectations(t)
}

func TestTransferValidator_Validate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *validatorFixture)
		expected error
	}{
		{
			name: "zero amount",
			setup: func(f *validatorFixture) {
				f.request.Amount = mustMoney("0", "INR")
			},
			expected: shared.ErrInvalidAmount,
		},
		{
			name: "unknown sender",
			setup: func(f *validatorFixture) {
				f.users.On("GetByID", context.Background(), f.sender.ID).
					Return(nil, shared.NewError(shared.KindUserNotFound, "user not found"))
			},
			expected: shared.ErrUserNotFound,
		},
		{
			name: "unknown receiver",
			setup: func(f *validatorFixture) {
				f.users.On("GetByID", context.Background(), f.sender.ID).Return(f.sender, nil)
				f.users.On("GetByUsername", context.Background(), f.receiver.Username).
					Return(nil, shared.NewError(shared.KindUserNotFound, "user not found"))
			},
			expected: shared.ErrUserNotFound,
		},
		{
			name: "sending wallet of another user",
			setup: func(f *validatorFixture) {
				f.expectParties()
				f.wallets.On("GetByIDAndOwner", context.Background(), f.sendingWallet.ID, f.sender.ID).
					Return(nil, shared.NewError(shared.KindWalletNotFound, "wallet not found"))
			},
			expected: shared.ErrWalletNotFound,
		},
		{
			name: "receiving wallet not owned by receiver",
			setup: func(f *validatorFixture) {
				f.expectParties()
				f.wallets.On("GetByIDAndOwner", context.Background(), f.sendingWallet.ID, f.sender.ID).Return(f.sendingWallet, nil)
				f.wallets.On("GetByIDAndOwner", context.Background(), f.receivingWallet.ID, f.receiver.ID).
					Return(nil, shared.NewError(shared.KindWalletNotFound, "wallet not found"))
			},
			expected: shared.ErrWalletNotFound,
		},
		{
			name: "transfer to own other wallet",
			setup: func(f *validatorFixture) {
				f.receiver = f.sender
				f.receivingWallet = testWallet(f.sender.ID, "0", "INR")
				f.request.ReceiverUsername = f.sender.Username
				f.request.ReceiverWalletID = f.receivingWallet.ID
				f.expectParties()
				f.expectWallets()
			},
			expected: shared.ErrTransactionForSameUser,
		},
		{
			name: "transfer to the sending wallet",
			setup: func(f *validatorFixture) {
				f.receiver = f.sender
				f.receivingWallet = f.sendingWallet
				f.request.ReceiverUsername = f.sender.Username
				f.request.ReceiverWalletID = f.sendingWallet.ID
				f.expectParties()
				f.expectWallets()
			},
			expected: shared.ErrTransactionForSameUser,
		},
		{
			name: "amount not in sending wallet currency",
			setup: func(f *validatorFixture) {
				f.request.Amount = mustMoney("100", "USD")
				f.expectParties()
				f.expectWallets()
			},
			expected: shared.ErrIncompatibleCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newValidatorFixture()
			tt.setup(f)

			validator := NewTransferValidator(f.users, f.wallets, newTestLogger())
			plan, err := validator.Validate(context.Background(), f.principal, f.request)
			assert.Nil(t, plan)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}
