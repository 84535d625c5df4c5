package actions

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/banking-core/internal/calculator"
	"github.com/carson-networks/banking-core/internal/domain"
	"github.com/carson-networks/banking-core/internal/service"
)

// FindAccount looks an account up by ID or account number in live data.
type FindAccount struct {
	ID     string
	Result domain.Account
}

func (a *FindAccount) Name() string { return "FindAccount" }

func (a *FindAccount) Perform(ctx context.Context, svc *service.Service) error {
	account, err := svc.Account.FindAccount(ctx, a.ID)
	if err != nil {
		return err
	}
	a.Result = account
	return nil
}

// ProjectSavings projects one saving account forward by Months.
type ProjectSavings struct {
	AccountID string
	Months    int
	Account   domain.Account
	Result    []calculator.ProjectionEntry
}

func (a *ProjectSavings) Name() string { return "ProjectSavings" }

func (a *ProjectSavings) Perform(ctx context.Context, svc *service.Service) error {
	account, err := svc.Account.FindAccount(ctx, a.AccountID)
	if err != nil {
		return err
	}
	entries, err := svc.Account.Projection(account, a.Months)
	if err != nil {
		return err
	}
	a.Account = account
	a.Result = entries
	return nil
}

// MortgagePayment computes the fixed monthly payment of one mortgage
// account. OK is false when the account has no payment to show.
type MortgagePayment struct {
	AccountID string
	Account   domain.Account
	Result    decimal.Decimal
	OK        bool
}

func (a *MortgagePayment) Name() string { return "MortgagePayment" }

func (a *MortgagePayment) Perform(ctx context.Context, svc *service.Service) error {
	account, err := svc.Account.FindAccount(ctx, a.AccountID)
	if err != nil {
		return err
	}
	a.Account = account
	a.Result, a.OK = svc.Account.MortgagePayment(account)
	return nil
}
