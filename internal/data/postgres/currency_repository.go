package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/wallet-ledger/internal/domain/currency"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/platform/persistence"
)

// Values are NUMERIC in the table and travel as text so no precision is lost in either direction
const (
	insertCurrencyQuery = `
		INSERT INTO currencies (code, value, updated_at)
		VALUES ($1, $2::numeric, $3)
	`
	selectCurrencyQuery = `
		SELECT code, value::text, updated_at
		FROM currencies
		WHERE code = $1
	`
	selectCurrenciesQuery = `
		SELECT code, value::text, updated_at
		FROM currencies
		ORDER BY code ASC
	`
	updateCurrencyQuery = `
		UPDATE currencies
		SET value = $1::numeric, updated_at = $2
		WHERE code = $3
	`
)

// CurrencyRepository implements the currency.Repository interface for PostgreSQL
type CurrencyRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCurrencyRepository creates a new PostgreSQL currency registry
func NewCurrencyRepository(logger *slog.Logger, db *persistence.PostgresDB) currency.Repository {
	return &CurrencyRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *CurrencyRepository) WithTx(tx pgx.Tx) currency.Repository {
	return &CurrencyRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create registers a currency; a duplicate code fails with CurrencyAlreadyExists
func (r *CurrencyRepository) Create(ctx context.Context, c *currency.Currency) error {
	_, err := r.querier.Exec(ctx, insertCurrencyQuery, string(c.Code), c.Value.String(), c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.WrapError(shared.KindCurrencyAlreadyExists, "currency already registered: "+string(c.Code), err)
		}
		r.logger.Error("Failed to create currency", "code", string(c.Code), "error", err)
		return fmt.Errorf("failed to create currency: %w", err)
	}
	return nil
}

func (r *CurrencyRepository) Get(ctx context.Context, code money.Currency) (*currency.Currency, error) {
	c, err := scanCurrency(r.querier.QueryRow(ctx, selectCurrencyQuery, string(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NewError(shared.KindCurrencyNotFound, "currency not found: "+string(code))
		}
		r.logger.Error("Failed to get currency", "code", string(code), "error", err)
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	return c, nil
}

func (r *CurrencyRepository) List(ctx context.Context) ([]*currency.Currency, error) {
	rows, err := r.querier.Query(ctx, selectCurrenciesQuery)
	if err != nil {
		r.logger.Error("Failed to list currencies", "error", err)
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	currencies := make([]*currency.Currency, 0)
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			r.logger.Error("Failed to scan currency", "error", err)
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over currencies: %w", err)
	}
	return currencies, nil
}

// Update replaces the value of a registered currency
func (r *CurrencyRepository) Update(ctx context.Context, c *currency.Currency) error {
	result, err := r.querier.Exec(ctx, updateCurrencyQuery, c.Value.String(), c.UpdatedAt, string(c.Code))
	if err != nil {
		r.logger.Error("Failed to update currency", "code", string(c.Code), "error", err)
		return fmt.Errorf("failed to update currency: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.NewError(shared.KindCurrencyNotFound, "currency not found: "+string(c.Code))
	}
	return nil
}

func scanCurrency(row pgx.Row) (*currency.Currency, error) {
	var (
		c     currency.Currency
		code  string
		value string
	)
	if err := row.Scan(&code, &value, &c.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid stored value for %s: %w", code, err)
	}
	c.Code = money.Currency(code)
	c.Value = parsed
	return &c, nil
}
