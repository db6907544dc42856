// Package postgres provides PostgreSQL implementations of the domain repositories.
// Every repository can be rebound to a pgx.Tx so wallet balances, ledger entries and
// outbox messages commit together.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
