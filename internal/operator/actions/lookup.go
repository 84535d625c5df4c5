package actions

import (
	"context"

	"github.com/carson-networks/banking-core/internal/domain"
	"github.com/carson-networks/banking-core/internal/service"
)

type ResolveTransaction struct {
	PrimaryID   string
	SecondaryID string
	Result      *domain.Transaction
}

func (a *ResolveTransaction) Name() string { return "ResolveTransaction" }

func (a *ResolveTransaction) Perform(ctx context.Context, svc *service.Service) error {
	txn, err := svc.Transaction.GetTransaction(ctx, a.PrimaryID, a.SecondaryID)
	if err != nil {
		return err
	}
	a.Result = txn
	return nil
}

type ListAccounts struct {
	Result *service.AccountList
}

func (a *ListAccounts) Name() string { return "ListAccounts" }

func (a *ListAccounts) Perform(ctx context.Context, svc *service.Service) error {
	list, err := svc.Account.ListAccounts(ctx)
	if err != nil {
		return err
	}
	a.Result = list
	return nil
}
