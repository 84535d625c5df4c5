package service

import (
	"context"

	"github.com/carson-networks/banking-core/internal/domain"
	"github.com/carson-networks/banking-core/internal/resolver"
)

type transactionBackend interface {
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
}

type transactionResolver interface {
	Resolve(ctx context.Context, primaryID, secondaryID string, lookup resolver.LookupFunc) (*domain.Transaction, error)
}

// TransactionService handles transaction lookups.
type TransactionService struct {
	backend  transactionBackend
	resolver transactionResolver
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(b transactionBackend, r transactionResolver) *TransactionService {
	return &TransactionService{backend: b, resolver: r}
}

// GetTransaction fetches a transaction by its primary ID, retrying with the
// secondary ID when the backend does not know the first one.
func (s *TransactionService) GetTransaction(ctx context.Context, primaryID, secondaryID string) (*domain.Transaction, error) {
	return s.resolver.Resolve(ctx, primaryID, secondaryID, s.backend.GetTransaction)
}
