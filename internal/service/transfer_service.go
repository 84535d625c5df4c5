package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/banking-core/internal/authorization"
	"github.com/carson-networks/banking-core/internal/domain"
)

// TransferInput is a transfer as entered by the user.
type TransferInput struct {
	FromAccountID   string
	ToAccountNumber string
	Amount          decimal.Decimal
	Description     string
}

type accountFinder interface {
	FindAccount(ctx context.Context, id string) (domain.Account, error)
}

type authorizer interface {
	Initiate(ctx context.Context, req authorization.InitiateRequest) (authorization.TransitionResult, error)
	Verify(ctx context.Context, transactionID, code string) (authorization.TransitionResult, error)
	Cancel(transactionID string) (authorization.TransitionResult, error)
	BelowMinimum(amount decimal.Decimal) bool
}

// TransferService runs transfers through step-up authorization.
type TransferService struct {
	accounts accountFinder
	machine  authorizer
}

// NewTransferService creates a new TransferService.
func NewTransferService(accounts accountFinder, machine authorizer) *TransferService {
	return &TransferService{accounts: accounts, machine: machine}
}

// Initiate looks up the source account and starts an authorization attempt.
// Amounts under the minimum are rejected by the machine without the lookup.
func (s *TransferService) Initiate(ctx context.Context, input TransferInput) (authorization.TransitionResult, error) {
	from := domain.Account{ID: input.FromAccountID}
	if !s.machine.BelowMinimum(input.Amount) {
		var err error
		if from, err = s.accounts.FindAccount(ctx, input.FromAccountID); err != nil {
			return authorization.TransitionResult{}, err
		}
	}

	return s.machine.Initiate(ctx, authorization.InitiateRequest{
		From:            from,
		ToAccountNumber: input.ToAccountNumber,
		Amount:          input.Amount,
		Description:     input.Description,
	})
}

func (s *TransferService) Verify(ctx context.Context, transactionID, code string) (authorization.TransitionResult, error) {
	return s.machine.Verify(ctx, transactionID, code)
}

func (s *TransferService) Cancel(transactionID string) (authorization.TransitionResult, error) {
	return s.machine.Cancel(transactionID)
}
