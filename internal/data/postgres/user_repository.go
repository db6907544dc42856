package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/platform/persistence"
)

const (
	userColumns = `id, username, name, currency, role, created_at`

	insertUserQuery = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	selectUserByIDQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	selectUserByUsernameQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1
	`
	deleteUserQuery = `
		DELETE FROM users
		WHERE id = $1
	`
)

// UserRepository implements the user.Repository interface for PostgreSQL
type UserRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user directory
func NewUserRepository(logger *slog.Logger, db *persistence.PostgresDB) user.Repository {
	return &UserRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *UserRepository) WithTx(tx pgx.Tx) user.Repository {
	return &UserRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a user. A taken username fails with UserAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.querier.Exec(ctx, insertUserQuery,
		u.ID,
		u.Username,
		u.Name,
		string(u.Currency),
		string(u.Role),
		u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.WrapError(shared.KindUserAlreadyExists, "username already taken: "+u.Username, err)
		}
		r.logger.Error("Failed to create user", "username", u.Username, "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := scanUser(r.querier.QueryRow(ctx, selectUserByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NewError(shared.KindUserNotFound, "user not found: "+id.String())
		}
		r.logger.Error("Failed to get user", "user_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	u, err := scanUser(r.querier.QueryRow(ctx, selectUserByUsernameQuery, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NewError(shared.KindUserNotFound, "user not found: "+username)
		}
		r.logger.Error("Failed to get user by username", "username", username, "error", err)
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return u, nil
}

// Delete removes the user. Wallets must be deleted first in the same transaction.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.querier.Exec(ctx, deleteUserQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete user", "user_id", id.String(), "error", err)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.NewError(shared.KindUserNotFound, "user not found: "+id.String())
	}
	return nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		u        user.User
		currency string
		role     string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Name, &currency, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Currency = money.Currency(currency)
	u.Role = user.Role(role)
	return &u, nil
}
