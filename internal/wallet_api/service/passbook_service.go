package service

import (
	"context"

	"github.com/wallet-ledger/internal/domain/passbook"
	"github.com/wallet-ledger/internal/domain/user"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PassbookServiceImpl implements the PassbookService interface
type PassbookServiceImpl struct {
	passbookRepo passbook.Repository
}

func NewPassbookService(passbookRepo passbook.Repository) PassbookService {
	return &PassbookServiceImpl{passbookRepo: passbookRepo}
}

// List clamps page to at least 1 and pageSize to [1, MaxPageSize]
func (s *PassbookServiceImpl) List(ctx context.Context, principal user.Principal, page, pageSize int) ([]*passbook.Record, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total, err := s.passbookRepo.CountByOwner(ctx, principal.UserID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*passbook.Record{}, 0, nil
	}

	records, err := s.passbookRepo.ListByOwner(ctx, principal.UserID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
