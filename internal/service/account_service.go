package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/banking-core/internal/backend"
	"github.com/carson-networks/banking-core/internal/calculator"
	"github.com/carson-networks/banking-core/internal/config"
	"github.com/carson-networks/banking-core/internal/domain"
)

// AccountList is a set of accounts and where they came from.
type AccountList struct {
	Accounts []domain.Account
	// Offline is set when the backend was unreachable and the accounts were
	// served by the fallback provider.
	Offline bool
}

type accountBackend interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	Session() backend.Session
}

// AccountService handles account reads and the figures derived from them.
type AccountService struct {
	backend  accountBackend
	fallback backend.FallbackProvider
	policy   config.Policy
	logger   *logrus.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(b accountBackend, fallback backend.FallbackProvider, policy config.Policy, logger *logrus.Logger) *AccountService {
	return &AccountService{
		backend:  b,
		fallback: fallback,
		policy:   policy,
		logger:   logger,
	}
}

// ListAccounts returns the session owner's accounts. Only a transport
// failure falls back, and only when a fallback provider is configured.
func (s *AccountService) ListAccounts(ctx context.Context) (*AccountList, error) {
	accounts, err := s.backend.ListAccounts(ctx)
	if err == nil {
		return &AccountList{Accounts: accounts}, nil
	}
	if !backend.IsTransport(err) || s.fallback == nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	ownerID := s.backend.Session().OwnerID
	s.logger.WithError(err).WithField("ownerID", ownerID).Warn("AccountService.ListAccounts.fallback")

	accounts, fallbackErr := s.fallback.Accounts(ownerID)
	if fallbackErr != nil {
		return nil, fmt.Errorf("list accounts: %w (fallback: %v)", err, fallbackErr)
	}
	return &AccountList{Accounts: accounts, Offline: true}, nil
}

// FindAccount returns one of the owner's accounts as the backend currently
// reports it. Fallback data is never used here.
func (s *AccountService) FindAccount(ctx context.Context, id string) (domain.Account, error) {
	accounts, err := s.backend.ListAccounts(ctx)
	if err != nil {
		return domain.Account{}, fmt.Errorf("find account %s: %w", id, err)
	}

	for _, account := range accounts {
		if account.ID == id || account.AccountNumber == id {
			return account, nil
		}
	}
	return domain.Account{}, fmt.Errorf("find account %s: %w", id, domain.ErrNotFound)
}

// Projection projects a saving account forward by months.
func (s *AccountService) Projection(account domain.Account, months int) ([]calculator.ProjectionEntry, error) {
	return calculator.ProjectAccount(account, months)
}

// MortgagePayment returns the fixed monthly payment of a mortgage account
// over the configured term. ok is false when no payment can be shown.
func (s *AccountService) MortgagePayment(account domain.Account) (payment decimal.Decimal, ok bool) {
	return calculator.MortgagePayment(account, s.policy.AmortizationTermYears)
}
