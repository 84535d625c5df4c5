package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/banking-core/internal/handlers/v1/httperr"
	"github.com/carson-networks/banking-core/internal/logging"
	"github.com/carson-networks/banking-core/internal/sandbox"
)

// TransferRequestBody is the request body for submitting a transfer.
type TransferRequestBody struct {
	FromAccountID   string `json:"fromAccountId" minLength:"1" doc:"Source account UUID"`
	ToAccountNumber string `json:"toAccountNumber" minLength:"1" doc:"Destination account number"`
	Amount          string `json:"amount" minLength:"1" doc:"Decimal amount"`
	Description     string `json:"description,omitempty" maxLength:"140" doc:"Free text shown to both parties"`
}

// TransferInput is the Huma input for submitting a transfer.
type TransferInput struct {
	Body TransferRequestBody
}

// TransferResponseBody is either a challenge or a completed transaction.
type TransferResponseBody struct {
	OTPRequired   bool         `json:"otpRequired" doc:"Whether the transfer waits for an OTP code"`
	TransactionID string       `json:"transactionId" doc:"Transaction UUID"`
	Message       string       `json:"message,omitempty" doc:"Challenge prompt for the user"`
	Transaction   *Transaction `json:"transaction,omitempty" doc:"The settled transaction when no OTP is needed"`
}

// TransferOutput is the Huma output for submitting a transfer.
type TransferOutput struct {
	Status int
	Body   TransferResponseBody
}

// transferer is the interface for submitting transfers.
type transferer interface {
	Transfer(ctx context.Context, ownerID string, req sandbox.TransferRequest) (*sandbox.TransferOutcome, error)
}

// TransferHandler handles POST /v1/transfer.
type TransferHandler struct {
	Bank transferer
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(bank transferer) *TransferHandler {
	return &TransferHandler{Bank: bank}
}

// Register registers the transfer endpoint with the Huma API.
func (h *TransferHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "transfer",
		Method:      http.MethodPost,
		Path:        "/v1/transfer",
		Summary:     "Submit a transfer",
		Description: "Settles the transfer, or holds it behind an OTP challenge when the amount needs step-up authentication.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *TransferHandler) handle(ctx context.Context, input *TransferInput) (*TransferOutput, error) {
	ownerID, err := httperr.Owner(ctx)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(input.Body.Amount)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid amount", err)
	}

	outcome, err := h.Bank.Transfer(ctx, ownerID, sandbox.TransferRequest{
		FromAccountID:   input.Body.FromAccountID,
		ToAccountNumber: input.Body.ToAccountNumber,
		Amount:          amount,
		Description:     input.Body.Description,
	})
	if err != nil {
		return nil, httperr.FromError(err, "failed to submit transfer")
	}

	txn := fromStorage(outcome.Transaction)
	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("transactionID", txn.ID)
		logData.AddData("otpRequired", outcome.OTPRequired)
	}

	if outcome.OTPRequired {
		return &TransferOutput{
			Status: http.StatusAccepted,
			Body: TransferResponseBody{
				OTPRequired:   true,
				TransactionID: txn.ID,
				Message:       outcome.Message,
			},
		}, nil
	}

	return &TransferOutput{
		Status: http.StatusCreated,
		Body: TransferResponseBody{
			TransactionID: txn.ID,
			Transaction:   txn,
		},
	}, nil
}
