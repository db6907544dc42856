package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wallet-ledger/internal/domain/currency"
	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/passbook"
	"github.com/wallet-ledger/internal/domain/user"
	"github.com/wallet-ledger/internal/domain/wallet"
	engine "github.com/wallet-ledger/internal/ledger_engine/service"
	"github.com/wallet-ledger/internal/wallet_api/middleware"
	"github.com/wallet-ledger/internal/wallet_api/service"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, username, name string, cur money.Currency) (*user.User, *wallet.Wallet, error) {
	args := m.Called(ctx, username, name, cur)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*user.User), args.Get(1).(*wallet.Wallet), args.Error(2)
}

func (m *MockUserService) Delete(ctx context.Context, principal user.Principal) error {
	return m.Called(ctx, principal).Error(0)
}

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) Create(ctx context.Context, principal user.Principal) (*wallet.Wallet, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletService) List(ctx context.Context, principal user.Principal) ([]*wallet.Wallet, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wallet.Wallet), args.Error(1)
}

func (m *MockWalletService) Deposit(ctx context.Context, principal user.Principal, walletID uuid.UUID, amount money.Money, correlationID string) (*engine.BalanceResult, error) {
	args := m.Called(ctx, principal, walletID, amount, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.BalanceResult), args.Error(1)
}

func (m *MockWalletService) Withdraw(ctx context.Context, principal user.Principal, walletID uuid.UUID, amount money.Money, correlationID string) (*engine.BalanceResult, error) {
	args := m.Called(ctx, principal, walletID, amount, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.BalanceResult), args.Error(1)
}

func (m *MockWalletService) FetchLedger(ctx context.Context, principal user.Principal, walletID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, principal, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockWalletService) FetchEntry(ctx context.Context, principal user.Principal, walletID uuid.UUID, timestamp int64) (*ledger.Entry, error) {
	args := m.Called(ctx, principal, walletID, timestamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Transfer(ctx context.Context, principal user.Principal, request *engine.TransferRequest) (*engine.TransferResult, error) {
	args := m.Called(ctx, principal, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.TransferResult), args.Error(1)
}

func (m *MockTransactionService) List(ctx context.Context, principal user.Principal) ([]*ledger.Transaction, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionService) GetByTimestamp(ctx context.Context, principal user.Principal, timestamp int64) (*ledger.Transaction, error) {
	args := m.Called(ctx, principal, timestamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

type MockPassbookService struct {
	mock.Mock
}

func (m *MockPassbookService) List(ctx context.Context, principal user.Principal, page, pageSize int) ([]*passbook.Record, int64, error) {
	args := m.Called(ctx, principal, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*passbook.Record), args.Get(1).(int64), args.Error(2)
}

type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) List(ctx context.Context) ([]*currency.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*currency.Currency), args.Error(1)
}

func (m *MockCurrencyService) Get(ctx context.Context, code string) (*currency.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.Currency), args.Error(1)
}

func (m *MockCurrencyService) Add(ctx context.Context, value service.CurrencyValue) (*currency.Currency, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.Currency), args.Error(1)
}

func (m *MockCurrencyService) Update(ctx context.Context, value service.CurrencyValue) (*currency.Currency, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.Currency), args.Error(1)
}

func (m *MockCurrencyService) UpdateMany(ctx context.Context, values []service.CurrencyValue) ([]*currency.Currency, error) {
	args := m.Called(ctx, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*currency.Currency), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestRouter mimics the production chain: correlation id, then a fixed principal
// in place of token verification. A zero principal leaves the request unauthenticated.
func setupTestRouter(principal user.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID())
	if principal.UserID != uuid.Nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.PrincipalKey, principal)
			c.Next()
		})
	}
	return r
}

func testPrincipal() user.Principal {
	return user.Principal{UserID: uuid.New(), Username: "alice", Role: user.RoleUser}
}

func performRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.CorrelationIDHeader, "corr-test")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// decodeData unmarshals the envelope and then its data field into out
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	if out != nil {
		raw, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return resp
}
