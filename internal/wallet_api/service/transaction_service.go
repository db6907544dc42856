package service

import (
	"context"

	"github.com/wallet-ledger/internal/domain/ledger"
	"github.com/wallet-ledger/internal/domain/user"
	engine "github.com/wallet-ledger/internal/ledger_engine/service"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	transferEngine  engine.TransferEngine
	transactionRepo ledger.TransactionRepository
}

func NewTransactionService(transferEngine engine.TransferEngine, transactionRepo ledger.TransactionRepository) TransactionService {
	return &TransactionServiceImpl{
		transferEngine:  transferEngine,
		transactionRepo: transactionRepo,
	}
}

func (s *TransactionServiceImpl) Transfer(ctx context.Context, principal user.Principal, request *engine.TransferRequest) (*engine.TransferResult, error) {
	return s.transferEngine.Transfer(ctx, principal, request)
}

// List returns transfers the principal sent or received
func (s *TransactionServiceImpl) List(ctx context.Context, principal user.Principal) ([]*ledger.Transaction, error) {
	return s.transactionRepo.ListByUser(ctx, principal.UserID)
}

func (s *TransactionServiceImpl) GetByTimestamp(ctx context.Context, principal user.Principal, timestamp int64) (*ledger.Transaction, error) {
	return s.transactionRepo.GetByUserAndTimestamp(ctx, principal.UserID, timestamp)
}
