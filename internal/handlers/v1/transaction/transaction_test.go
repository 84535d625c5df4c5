package transaction

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/banking-core/internal/domain"
	"github.com/carson-networks/banking-core/internal/sandbox"
	"github.com/carson-networks/banking-core/internal/storage/transaction"
)

type mockBank struct {
	mock.Mock
}

func (m *mockBank) Transfer(ctx context.Context, ownerID string, req sandbox.TransferRequest) (*sandbox.TransferOutcome, error) {
	args := m.Called(ctx, ownerID, req)
	if outcome := args.Get(0); outcome != nil {
		return outcome.(*sandbox.TransferOutcome), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBank) VerifyOTP(ctx context.Context, ownerID, transactionID, code string) (*transaction.Transaction, error) {
	args := m.Called(ctx, ownerID, transactionID, code)
	if txn := args.Get(0); txn != nil {
		return txn.(*transaction.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBank) Transaction(ctx context.Context, ownerID, key string) (*transaction.Transaction, error) {
	args := m.Called(ctx, ownerID, key)
	if txn := args.Get(0); txn != nil {
		return txn.(*transaction.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

// newTestAPI registers every transaction handler against a humatest API
// whose requests are authenticated as ownerID. An empty ownerID leaves
// requests anonymous.
func newTestAPI(t *testing.T, bank *mockBank, ownerID string) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	if ownerID != "" {
		api.UseMiddleware(func(ctx huma.Context, next func(huma.Context)) {
			next(huma.WithContext(ctx, sandbox.WithOwner(ctx.Context(), ownerID)))
		})
	}
	NewTransferHandler(bank).Register(api)
	NewVerifyOTPHandler(bank).Register(api)
	NewGetTransactionHandler(bank).Register(api)
	return api
}

func storedTransaction(status string) *transaction.Transaction {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	txn := &transaction.Transaction{
		ID:                       uuid.Must(uuid.FromString("5f1c2d3e-4a5b-4c6d-8e7f-90a1b2c3d4e5")),
		StorageKey:               "TRX5F1C2D3E4A5B",
		SourceAccountID:          uuid.Must(uuid.FromString("7b0c3a52-6f0e-4c1a-9f43-0a8d6c1f2e01")),
		SourceOwnerID:            "demo-owner",
		DestinationAccountNumber: "2000000001",
		Amount:                   decimal.RequireFromString("250000"),
		Currency:                 "IDR",
		Type:                     transaction.TypeTransfer,
		Status:                   status,
		Description:              "rent",
		ReferenceNumber:          "REF20260301AB12",
		CreatedAt:                created,
	}
	if status == transaction.StatusCompleted {
		txn.CompletedAt = sql.NullTime{Time: created.Add(time.Second), Valid: true}
	}
	return txn
}

func rejection(kind error, reason string) error {
	return &sandbox.RejectionError{Kind: kind, Reason: reason}
}

func decodeProblem(t *testing.T, payload []byte) huma.ErrorModel {
	t.Helper()
	var problem huma.ErrorModel
	require.NoError(t, json.Unmarshal(payload, &problem))
	return problem
}

// -- Transfer tests --

func TestTransfer_Settled(t *testing.T) {
	bank := new(mockBank)
	api := newTestAPI(t, bank, "demo-owner")

	expected := sandbox.TransferRequest{
		FromAccountID:   "7b0c3a52-6f0e-4c1a-9f43-0a8d6c1f2e01",
		ToAccountNumber: "2000000001",
		Amount:          decimal.RequireFromString("250000"),
		Description:     "rent",
	}
	bank.On("Transfer", mock.Anything, "demo-owner", mock.MatchedBy(func(req sandbox.TransferRequest) bool {
		return req.FromAccountID == expected.FromAccountID &&
			req.ToAccountNumber == expected.ToAccountNumber &&
			req.Amount.Equal(expected.Amount) &&
			req.Description == expected.Description
	})).Return(&sandbox.TransferOutcome{Transaction: storedTransaction(transaction.StatusCompleted)}, nil)

	resp := api.Post("/v1/transfer", map[string]any{
		"fromAccountId":   expected.FromAccountID,
		"toAccountNumber": expected.ToAccountNumber,
		"amount":          "250000",
		"description":     "rent",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)

	var body TransferResponseBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.False(t, body.OTPRequired)
	require.NotNil(t, body.Transaction)
	assert.Equal(t, body.TransactionID, body.Transaction.ID)
	assert.Equal(t, "COMPLETED", body.Transaction.Status)
	assert.Equal(t, "TRX5F1C2D3E4A5B", body.Transaction.SecondaryID)
	assert.Equal(t, "250000", body.Transaction.Amount)
	require.NotNil(t, body.Transaction.CompletedAt)
	bank.AssertExpectations(t)
}

func TestTransfer_ChallengeIssued(t *testing.T) {
	bank := new(mockBank)
	api := newTestAPI(t, bank, "demo-owner")

	bank.On("Transfer", mock.Anything, "demo-owner", mock.Anything).Return(&sandbox.TransferOutcome{
		OTPRequired: true,
		Message:     "Enter the code",
		Transaction: storedTransaction(transaction.StatusPending),
	}, nil)

	resp := api.Post("/v1/transfer", map[string]any{
		"fromAccountId":   "7b0c3a52-6f0e-4c1a-9f43-0a8d6c1f2e01",
		"toAccountNumber": "2000000001",
		"amount":          "5000000",
	})

	assert.Equal(t, http.StatusAccepted, resp.Code)

	var body TransferResponseBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.True(t, body.OTPRequired)
	assert.Equal(t, "5f1c2d3e-4a5b-4c6d-8e7f-90a1b2c3d4e5", body.TransactionID)
	assert.Equal(t, "Enter the code", body.Message)
	assert.Nil(t, body.Transaction)
}

func TestTransfer_Refused(t *testing.T) {
	bank := new(mockBank)
	api := newTestAPI(t, bank, "demo-owner")

	bank.On("Transfer", mock.Anything, "demo-owner", mock.Anything).
		Return(nil, rejection(sandbox.ErrTransferRefused, "insufficient funds"))

	resp := api.Post("/v1/transfer", map[string]any{
		"fromAccountId":   "7b0c3a52-6f0e-4c1a-9f43-0a8d6c1f2e01",
		"toAccountNumber": "2000000001",
		"amount":          "999999999",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "insufficient funds", decodeProblem(t, resp.Body.Bytes()).Detail)
}

func TestTransfer_InvalidAmount(t *testing.T) {
	bank := new(mockBank)
	api := newTestAPI(t, bank, "demo-owner")

	resp := api.Post("/v1/transfer", map[string]any{
		"fromAccountId":   "7b0c3a52-6f0e-4c1a-9f43-0a8d6c1f2e01",
		"toAccountNumber": "2000000001",
		"amount":          "lots",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	bank.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransfer_MissingFields(t *testing.T) {
	bank := new(mockBank)
	api := newTestAPI(t, bank, "demo-owner")

	// Huma schema validation rejects the request before the handler runs.
	resp := api.Post("/v1/transfer", map[string]any{
		"amount": "1000",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	bank.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransfer_Unauthenticated(t *testing.T) {
	bank := new(mockBank)
	api := newTestAPI(t, bank, "")

	resp := api.Post("/v1/transfer", map[string]any{
		"fromAccountId":   "7b0c3a52-6f0e-4c1a-9f43-0a8d6c1f2e01",
		"toAccountNumber": "2000000001",
		"amount":          "1000",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	bank.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransfer_StoreFailure(t *testing.T) {
	bank := new(mockBank)
	api := newTestAPI(t, bank, "demo-owner")

	bank.On("Transfer", mock.Anything, "demo-owner", mock.Anything).Return(nil, errors.New("deadlock detected"))

	resp := api.Post("/v1/transfer", map[string]any{
		"fromAccountId":   "7b0c3a52-6f0e-4c1a-9f43-0a8d6c1f2e01",
		"toAccountNumber": "2000000001",
		"amount":          "1000",
	})

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

// -- VerifyOTP tests --

func TestVerifyOTP_Settled(t *testing.T) {
	bank := new(mockBank)
	api := newTestAPI(t, bank, "demo-owner")

	bank.On("VerifyOTP", mock.Anything, "demo-owner", "5f1c2d3e-4a5b-4c6d-8e7f-90a1b2c3d4e5", "123456").
		Return(storedTransaction(transaction.StatusCompleted), nil)

	resp := api.Post("/v1/verify-otp", map[string]any{
		"transactionId": "5f1c2d3e-4a5b-4c6d-8e7f-90a1b2c3d4e5",
		"otpCode":       "123456",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var body TransactionEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotNil(t, body.Transaction)
	assert.Equal(t, "COMPLETED", body.Transaction.Status)
	bank.AssertExpectations(t)
}

func TestVerifyOTP_Failed(t *testing.T) {
	tests := []string{"code mismatch", "code expired", "too many attempts", "challenge is closed"}

	for _, reason := range tests {
		t.Run(reason, func(t *testing.T) {
			bank := new(mockBank)
			api := newTestAPI(t, bank, "demo-owner")

			bank.On("VerifyOTP", mock.Anything, "demo-owner", mock.Anything, mock.Anything).
				Return(nil, rejection(sandbox.ErrVerificationFailed, reason))

			resp := api.Post("/v1/verify-otp", map[string]any{
				"transactionId": "5f1c2d3e-4a5b-4c6d-8e7f-90a1b2c3d4e5",
				"otpCode":       "000000",
			})

			assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
			assert.Equal(t, reason, decodeProblem(t, resp.Body.Bytes()).Detail)
		})
	}
}

func TestVerifyOTP_UnknownTransaction(t *testing.T) {
	bank := new(mockBank)
	api := newTestAPI(t, bank, "demo-owner")

	bank.On("VerifyOTP", mock.Anything, "demo-owner", "nope", "123456").
		Return(nil, fmt.Errorf("transaction nope: %w", domain.ErrNotFound))

	resp := api.Post("/v1/verify-otp", map[string]any{
		"transactionId": "nope",
		"otpCode":       "123456",
	})

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

// -- GetTransaction tests --

func TestGetTransaction_Found(t *testing.T) {
	bank := new(mockBank)
	api := newTestAPI(t, bank, "demo-owner")

	bank.On("Transaction", mock.Anything, "demo-owner", "TRX5F1C2D3E4A5B").
		Return(storedTransaction(transaction.StatusPending), nil)

	resp := api.Get("/v1/transaction/TRX5F1C2D3E4A5B")

	assert.Equal(t, http.StatusOK, resp.Code)

	var body TransactionEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotNil(t, body.Transaction)
	assert.Equal(t, "5f1c2d3e-4a5b-4c6d-8e7f-90a1b2c3d4e5", body.Transaction.ID)
	assert.Equal(t, "PENDING", body.Transaction.Status)
	assert.Nil(t, body.Transaction.CompletedAt)
}

func TestGetTransaction_NotFound(t *testing.T) {
	bank := new(mockBank)
	api := newTestAPI(t, bank, "demo-owner")

	bank.On("Transaction", mock.Anything, "demo-owner", "missing").
		Return(nil, fmt.Errorf("transaction missing: %w", domain.ErrNotFound))

	resp := api.Get("/v1/transaction/missing")

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetTransaction_Unauthenticated(t *testing.T) {
	bank := new(mockBank)
	api := newTestAPI(t, bank, "")

	resp := api.Get("/v1/transaction/TRX5F1C2D3E4A5B")

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	bank.AssertNotCalled(t, "Transaction", mock.Anything, mock.Anything, mock.Anything)
}
