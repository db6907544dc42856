package service

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/wallet-ledger/internal/domain/currency"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/platform/persistence"
)

// CurrencyServiceImpl implements the CurrencyService interface
type CurrencyServiceImpl struct {
	db           persistence.TxRunner
	currencyRepo currency.Repository
	logger       *slog.Logger
}

func NewCurrencyService(db persistence.TxRunner, currencyRepo currency.Repository, logger *slog.Logger) CurrencyService {
	return &CurrencyServiceImpl{
		db:           db,
		currencyRepo: currencyRepo,
		logger:       logger,
	}
}

func (s *CurrencyServiceImpl) List(ctx context.Context) ([]*currency.Currency, error) {
	return s.currencyRepo.List(ctx)
}

func (s *CurrencyServiceImpl) Get(ctx context.Context, code string) (*currency.Currency, error) {
	cur, err := money.ParseCurrency(code)
	if err != nil {
		return nil, shared.WrapError(shared.KindInvalidRequest, err.Error(), err)
	}
	return s.currencyRepo.Get(ctx, cur)
}

func (s *CurrencyServiceImpl) Add(ctx context.Context, value CurrencyValue) (*currency.Currency, error) {
	cur, err := newCurrency(value)
	if err != nil {
		return nil, err
	}
	if err := s.currencyRepo.Create(ctx, cur); err != nil {
		return nil, err
	}

	s.logger.Info("Currency added", "code", string(cur.Code), "value", cur.Value.String())
	return cur, nil
}

func (s *CurrencyServiceImpl) Update(ctx context.Context, value CurrencyValue) (*currency.Currency, error) {
	updated, err := s.UpdateMany(ctx, []CurrencyValue{value})
	if err != nil {
		return nil, err
	}
	return updated[0], nil
}

// UpdateMany validates every value before touching the registry, then applies them in one transaction
func (s *CurrencyServiceImpl) UpdateMany(ctx context.Context, values []CurrencyValue) ([]*currency.Currency, error) {
	if len(values) == 0 {
		return nil, shared.NewError(shared.KindInvalidRequest, "at least one currency is required")
	}

	currencies := make([]*currency.Currency, 0, len(values))
	for _, v := range values {
		cur, err := newCurrency(v)
		if err != nil {
			return nil, err
		}
		currencies = append(currencies, cur)
	}

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repoTx := s.currencyRepo.WithTx(tx)
		for _, cur := range currencies {
			if err := repoTx.Update(ctx, cur); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Currency update rejected", "count", len(currencies), "error", err)
		return nil, err
	}

	s.logger.Info("Currencies updated", "count", len(currencies))
	return currencies, nil
}

func newCurrency(value CurrencyValue) (*currency.Currency, error) {
	cur, err := currency.New(value.Code, value.Value)
	if err != nil {
		return nil, shared.WrapError(shared.KindInvalidRequest, err.Error(), err)
	}
	return cur, nil
}
