package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/domain/wallet"
	"github.com/wallet-ledger/internal/ledger_engine/service"
)

type TransferValidatorImpl struct {
	userRepo   user.Repository
	walletRepo wallet.Repository
	logger     *slog.Logger
}

func NewTransferValidator(userRepo user.Repository, walletRepo wallet.Repository, logger *slog.Logger) service.TransferValidator {
	return &TransferValidatorImpl{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		logger:     logger,
	}
}

// Validate resolves both parties and their wallets and checks the request against them.
// The returned plan carries Debit only; Credit and ServiceCharge are filled by the fee quoter.
func (v *TransferValidatorImpl) Validate(ctx context.Context, principal user.Principal, request *service.TransferRequest) (*service.TransferPlan, error) {
	logger := v.logger
	if request.CorrelationID != "" {
		logger = v.logger.With("correlation_id", request.CorrelationID)
	}

	if err := request.Amount.Validate(); err != nil {
		logger.Warn("Invalid transfer amount", "amount", request.Amount.String())
		return nil, err
	}

	sender, err := v.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		logger.Warn("Sender not resolved", "user_id", principal.UserID.String(), "error", err)
		return nil, err
	}
	receiver, err := v.userRepo.GetByUsername(ctx, request.ReceiverUsername)
	if err != nil {
		logger.Warn("Receiver not resolved", "username", request.ReceiverUsername, "error", err)
		return nil, err
	}

	sendingWallet, err := v.walletRepo.GetByIDAndOwner(ctx, request.SenderWalletID, sender.ID)
	if err != nil {
		logger.Warn("Sending wallet not accessible", "wallet_id", request.SenderWalletID.String(), "error", err)
		return nil, err
	}
	receivingWallet, err := v.walletRepo.GetByIDAndOwner(ctx, request.ReceiverWalletID, receiver.ID)
	if err != nil {
		logger.Warn("Receiving wallet not accessible", "wallet_id", request.ReceiverWalletID.String(), "error", err)
		return nil, err
	}

	if sendingWallet.ID == receivingWallet.ID {
		return nil, shared.NewError(shared.KindTransactionForSameUser, "cannot transfer to the sending wallet")
	}
	if sender.ID == receiver.ID {
		return nil, shared.NewError(shared.KindTransactionForSameUser, "cannot transfer to yourself")
	}

	if request.Amount.Currency != sendingWallet.Currency() {
		logger.Warn("Transfer currency mismatch",
			"wallet_currency", string(sendingWallet.Currency()),
			"amount_currency", string(request.Amount.Currency))
		return nil, shared.NewError(shared.KindIncompatibleCurrency,
			fmt.Sprintf("sending wallet holds %s, got %s", sendingWallet.Currency(), request.Amount.Currency))
	}

	return &service.TransferPlan{
		SenderID:         sender.ID,
		ReceiverID:       receiver.ID,
		SenderWalletID:   sendingWallet.ID,
		ReceiverWalletID: receivingWallet.ID,
		SenderCurrency:   sendingWallet.Currency(),
		ReceiverCurrency: receivingWallet.Currency(),
		Debit:            request.Amount,
		Timestamp:        ledger.NowMillis(),
		CorrelationID:    request.CorrelationID,
	}, nil
}
