package backend

import (
	"fmt"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/banking-core/internal/domain"
)

type transferRequest struct {
	FromAccountID   string          `json:"fromAccountId"`
	ToAccountNumber string          `json:"toAccountNumber"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
}

type transferResponse struct {
	OTPRequired   bool            `json:"otpRequired"`
	TransactionID string          `json:"transactionId"`
	Message       string          `json:"message"`
	Transaction   *transactionDTO `json:"transaction"`
}

type verifyOTPRequest struct {
	TransactionID string `json:"transactionId"`
	OTPCode       string `json:"otpCode"`
}

type transactionEnvelope struct {
	Transaction transactionDTO `json:"transaction"`
}

type accountsEnvelope struct {
	Accounts []accountDTO `json:"accounts"`
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
	Title  string `json:"title"`
}

func (b errorBody) reason() string {
	switch {
	case b.Error != "":
		return b.Error
	case b.Detail != "":
		return b.Detail
	default:
		return b.Title
	}
}

type transactionDTO struct {
	ID                       string          `json:"id"`
	SecondaryID              string          `json:"secondaryId"`
	SourceAccountID          string          `json:"sourceAccountId"`
	DestinationAccountNumber string          `json:"destinationAccountNumber"`
	Amount                   decimal.Decimal `json:"amount"`
	Currency                 string          `json:"currency"`
	Type                     string          `json:"type"`
	Status                   string          `json:"status"`
	Description              string          `json:"description"`
	ReferenceNumber          string          `json:"referenceNumber"`
	CreatedAt                time.Time       `json:"createdAt"`
	CompletedAt              *time.Time      `json:"completedAt"`
}

func (d transactionDTO) toDomain() (*domain.Transaction, error) {
	txnType, err := domain.ParseTransactionType(d.Type)
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseTransactionStatus(d.Status)
	if err != nil {
		return nil, err
	}

	return &domain.Transaction{
		ID:                       d.ID,
		SecondaryID:              d.SecondaryID,
		SourceAccountID:          d.SourceAccountID,
		DestinationAccountNumber: d.DestinationAccountNumber,
		Amount:                   d.Amount,
		Currency:                 d.Currency,
		Type:                     txnType,
		Status:                   status,
		Description:              d.Description,
		ReferenceNumber:          d.ReferenceNumber,
		CreatedAt:                d.CreatedAt,
		CompletedAt:              d.CompletedAt,
	}, nil
}

type accountDTO struct {
	ID            string           `json:"id"`
	OwnerID       string           `json:"ownerId"`
	AccountNumber string           `json:"accountNumber"`
	Type          string           `json:"type"`
	Balance       decimal.Decimal  `json:"balance"`
	InterestRate  *decimal.Decimal `json:"interestRate"`
	Currency      string           `json:"currency"`
	Active        bool             `json:"active"`
}

func (d accountDTO) toDomain() (domain.Account, error) {
	accountType, err := domain.ParseAccountType(d.Type)
	if err != nil {
		return domain.Account{}, err
	}

	account := domain.Account{
		ID:            d.ID,
		OwnerID:       d.OwnerID,
		AccountNumber: d.AccountNumber,
		Type:          accountType,
		Balance:       d.Balance,
		InterestRate:  omit.FromPtr(d.InterestRate),
		Currency:      d.Currency,
		Active:        d.Active,
	}
	if err := account.Validate(); err != nil {
		return domain.Account{}, fmt.Errorf("account %s: %w", d.ID, err)
	}
	return account, nil
}
