package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/ledger_engine/service"
)

// FeeQuoterImpl prices cross-currency transfers with a flat service charge
// that is taken out of the receiver's credit
type FeeQuoterImpl struct {
	converter money.Converter
	fee       money.Money
	logger    *slog.Logger
}

func NewFeeQuoter(converter money.Converter, fee money.Money, logger *slog.Logger) service.FeeQuoter {
	return &FeeQuoterImpl{
		converter: converter,
		fee:       fee,
		logger:    logger,
	}
}

func (q *FeeQuoterImpl) Quote(ctx context.Context, plan *service.TransferPlan) error {
	if !plan.CrossCurrency() {
		plan.Credit = plan.Debit
		plan.ServiceCharge = nil
		return nil
	}

	logger := q.logger.With("from", string(plan.SenderCurrency), "to", string(plan.ReceiverCurrency))
	if plan.CorrelationID != "" {
		logger = logger.With("correlation_id", plan.CorrelationID)
	}

	converted, err := plan.Debit.ConvertTo(ctx, q.converter, plan.ReceiverCurrency)
	if err != nil {
		logger.Error("Failed to convert transfer amount", "amount", plan.Debit.String(), "error", err)
		return err
	}
	fee, err := q.fee.ConvertTo(ctx, q.converter, plan.ReceiverCurrency)
	if err != nil {
		logger.Error("Failed to convert service charge", "fee", q.fee.String(), "error", err)
		return err
	}

	credit := money.New(converted.Amount.Sub(fee.Amount), plan.ReceiverCurrency)
	if credit.Validate() != nil {
		logger.Warn("Transfer does not cover the service charge", "converted", converted.String(), "fee", fee.String())
		return shared.NewError(shared.KindInvalidAmount,
			fmt.Sprintf("transfer of %s does not cover the service charge of %s", converted, fee))
	}

	plan.Credit = credit
	plan.ServiceCharge = &fee
	logger.Info("Transfer quoted", "debit", plan.Debit.String(), "credit", credit.String(), "fee", fee.String())
	return nil
}
