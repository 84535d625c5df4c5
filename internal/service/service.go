package service

import (
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/banking-core/internal/authorization"
	"github.com/carson-networks/banking-core/internal/backend"
	"github.com/carson-networks/banking-core/internal/config"
	"github.com/carson-networks/banking-core/internal/metrics"
	"github.com/carson-networks/banking-core/internal/resolver"
)

// Service holds everything the client front end calls.
type Service struct {
	Account     *AccountService
	Transaction *TransactionService
	Transfer    *TransferService
}

// NewService wires the services around one backend client. fallback may be
// nil, in which case an unreachable backend is reported as an error.
func NewService(client *backend.Client, fallback backend.FallbackProvider, policy config.Policy, logger *logrus.Logger, collector metrics.Collector) *Service {
	accounts := NewAccountService(client, fallback, policy, logger)
	machine := authorization.NewMachine(client, policy, logger, collector)

	return &Service{
		Account:     accounts,
		Transaction: NewTransactionService(client, resolver.NewResolver(logger, collector)),
		Transfer:    NewTransferService(accounts, machine),
	}
}
