package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/banking-core/internal/handlers/v1/httperr"
	"github.com/carson-networks/banking-core/internal/logging"
	"github.com/carson-networks/banking-core/internal/storage/transaction"
)

// VerifyOTPRequestBody is the request body for answering a challenge.
type VerifyOTPRequestBody struct {
	TransactionID string `json:"transactionId" minLength:"1" doc:"Transaction UUID from the transfer response"`
	OTPCode       string `json:"otpCode" minLength:"1" doc:"Code delivered to the user"`
}

// VerifyOTPInput is the Huma input for answering a challenge.
type VerifyOTPInput struct {
	Body VerifyOTPRequestBody
}

// VerifyOTPOutput is the Huma output for answering a challenge.
type VerifyOTPOutput struct {
	Body TransactionEnvelope
}

// otpVerifier is the interface for answering challenges.
type otpVerifier interface {
	VerifyOTP(ctx context.Context, ownerID, transactionID, code string) (*transaction.Transaction, error)
}

// VerifyOTPHandler handles POST /v1/verify-otp.
type VerifyOTPHandler struct {
	Bank otpVerifier
}

// NewVerifyOTPHandler creates a new VerifyOTPHandler.
func NewVerifyOTPHandler(bank otpVerifier) *VerifyOTPHandler {
	return &VerifyOTPHandler{Bank: bank}
}

// Register registers the OTP verification endpoint with the Huma API.
func (h *VerifyOTPHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "verify-otp",
		Method:      http.MethodPost,
		Path:        "/v1/verify-otp",
		Summary:     "Verify an OTP code",
		Description: "Settles a challenged transfer when the code matches. Expired or exhausted challenges fail the transfer.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *VerifyOTPHandler) handle(ctx context.Context, input *VerifyOTPInput) (*VerifyOTPOutput, error) {
	ownerID, err := httperr.Owner(ctx)
	if err != nil {
		return nil, err
	}
	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("transactionID", input.Body.TransactionID)
	}

	txn, err := h.Bank.VerifyOTP(ctx, ownerID, input.Body.TransactionID, input.Body.OTPCode)
	if err != nil {
		return nil, httperr.FromError(err, "failed to verify code")
	}

	return &VerifyOTPOutput{Body: TransactionEnvelope{Transaction: fromStorage(txn)}}, nil
}
