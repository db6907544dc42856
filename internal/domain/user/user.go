package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wallet-ledger/internal/domain/money"
)

// Common errors
var (
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrInvalidRole   = errors.New("role must be USER or ADMIN")
)

// Role grants access to administrative operations
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is a wallet owner registered in the directory
type User struct {
	ID        uuid.UUID      `json:"id"`
	Username  string         `json:"username"`
	Name      string         `json:"name"`
	Currency  money.Currency `json:"currency"` // Currency of wallets created for the user
	Role      Role           `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewUser validates the registration fields
func NewUser(username, name string, currency money.Currency, role Role) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	cur, err := money.ParseCurrency(string(currency))
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = RoleUser
	}
	if role != RoleUser && role != RoleAdmin {
		return nil, ErrInvalidRole
	}

	return &User{
		ID:        uuid.New(),
		Username:  username,
		Name:      strings.TrimSpace(name),
		Currency:  cur,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Principal is the authenticated identity acting on a request
type Principal struct {
	UserID   uuid.UUID
	Username string
	Role     Role
}

// IsAdmin reports whether the principal may manage currencies
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
