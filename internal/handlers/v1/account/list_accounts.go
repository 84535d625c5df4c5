package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/banking-core/internal/handlers/v1/httperr"
	"github.com/carson-networks/banking-core/internal/logging"
	"github.com/carson-networks/banking-core/internal/storage/account"
)

// ListAccountsInput is the Huma input for listing accounts.
type ListAccountsInput struct{}

// ListAccountsResponseBody is the response body for listing accounts.
type ListAccountsResponseBody struct {
	Accounts []Account `json:"accounts" doc:"Accounts of the authenticated owner"`
}

// ListAccountsOutput is the Huma output for listing accounts.
type ListAccountsOutput struct {
	Body ListAccountsResponseBody
}

// accountLister is the interface for listing accounts.
type accountLister interface {
	Accounts(ctx context.Context, ownerID string) ([]*account.Account, error)
}

// ListAccountsHandler handles GET /v1/accounts.
type ListAccountsHandler struct {
	Bank accountLister
}

// NewListAccountsHandler creates a new ListAccountsHandler.
func NewListAccountsHandler(bank accountLister) *ListAccountsHandler {
	return &ListAccountsHandler{Bank: bank}
}

// Register registers the list accounts endpoint with the Huma API.
func (h *ListAccountsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-accounts",
		Method:      http.MethodGet,
		Path:        "/v1/accounts",
		Summary:     "List accounts",
		Description: "Returns every account of the authenticated owner.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *ListAccountsHandler) handle(ctx context.Context, _ *ListAccountsInput) (*ListAccountsOutput, error) {
	ownerID, err := httperr.Owner(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := h.Bank.Accounts(ctx, ownerID)
	if err != nil {
		return nil, httperr.FromError(err, "failed to list accounts")
	}

	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("ownerID", ownerID)
		logData.AddData("accountCount", len(accounts))
	}

	resp := ListAccountsResponseBody{
		Accounts: make([]Account, len(accounts)),
	}
	for i, acc := range accounts {
		resp.Accounts[i] = fromStorage(acc)
	}

	return &ListAccountsOutput{Body: resp}, nil
}
