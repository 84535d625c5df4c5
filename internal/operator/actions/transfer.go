package actions

import (
	"context"

	"github.com/carson-networks/banking-core/internal/authorization"
	"github.com/carson-networks/banking-core/internal/service"
)

// InitiateTransfer starts an authorization attempt. Result is populated even
// when Perform fails with a transport error.
type InitiateTransfer struct {
	Input  service.TransferInput
	Result authorization.TransitionResult
}

func (a *InitiateTransfer) Name() string { return "InitiateTransfer" }

func (a *InitiateTransfer) Perform(ctx context.Context, svc *service.Service) error {
	result, err := svc.Transfer.Initiate(ctx, a.Input)
	a.Result = result
	return err
}

type VerifyOTP struct {
	TransactionID string
	Code          string
	Result        authorization.TransitionResult
}

func (a *VerifyOTP) Name() string { return "VerifyOTP" }

func (a *VerifyOTP) Perform(ctx context.Context, svc *service.Service) error {
	result, err := svc.Transfer.Verify(ctx, a.TransactionID, a.Code)
	a.Result = result
	return err
}

type CancelChallenge struct {
	TransactionID string
	Result        authorization.TransitionResult
}

func (a *CancelChallenge) Name() string { return "CancelChallenge" }

func (a *CancelChallenge) Perform(_ context.Context, svc *service.Service) error {
	result, err := svc.Transfer.Cancel(a.TransactionID)
	a.Result = result
	return err
}
