package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/banking-core/internal/handlers/v1/httperr"
	"github.com/carson-networks/banking-core/internal/storage/transaction"
)

// GetTransactionInput is the Huma input for fetching a transaction.
type GetTransactionInput struct {
	ID string `path:"id" minLength:"1" doc:"Transaction UUID or storage key"`
}

// GetTransactionOutput is the Huma output for fetching a transaction.
type GetTransactionOutput struct {
	Body TransactionEnvelope
}

// transactionFinder is the interface for looking up transactions.
type transactionFinder interface {
	Transaction(ctx context.Context, ownerID, key string) (*transaction.Transaction, error)
}

// GetTransactionHandler handles GET /v1/transaction/{id}.
type GetTransactionHandler struct {
	Bank transactionFinder
}

// NewGetTransactionHandler creates a new GetTransactionHandler.
func NewGetTransactionHandler(bank transactionFinder) *GetTransactionHandler {
	return &GetTransactionHandler{Bank: bank}
}

// Register registers the get transaction endpoint with the Huma API.
func (h *GetTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-transaction",
		Method:      http.MethodGet,
		Path:        "/v1/transaction/{id}",
		Summary:     "Get a transaction",
		Description: "Looks a transaction up by its UUID or its storage key.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *GetTransactionHandler) handle(ctx context.Context, input *GetTransactionInput) (*GetTransactionOutput, error) {
	ownerID, err := httperr.Owner(ctx)
	if err != nil {
		return nil, err
	}

	txn, err := h.Bank.Transaction(ctx, ownerID, input.ID)
	if err != nil {
		return nil, httperr.FromError(err, "failed to get transaction")
	}

	return &GetTransactionOutput{Body: TransactionEnvelope{Transaction: fromStorage(txn)}}, nil
}
