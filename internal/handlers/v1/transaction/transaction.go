package transaction

import (
	"time"

	"github.com/carson-networks/banking-core/internal/storage/transaction"
)

// Transaction is the API response model for a transaction.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID                       string     `json:"id" doc:"Transaction UUID"`
	SecondaryID              string     `json:"secondaryId" doc:"Storage key, accepted anywhere the UUID is"`
	SourceAccountID          string     `json:"sourceAccountId" doc:"Source account UUID"`
	DestinationAccountNumber string     `json:"destinationAccountNumber" doc:"Destination account number"`
	Amount                   string     `json:"amount" doc:"Decimal amount"`
	Currency                 string     `json:"currency" doc:"ISO currency code"`
	Type                     string     `json:"type" enum:"TRANSFER" doc:"Transaction type"`
	Status                   string     `json:"status" enum:"PENDING,COMPLETED,FAILED,CANCELLED" doc:"Transaction status"`
	Description              string     `json:"description" doc:"Free text entered by the sender"`
	ReferenceNumber          string     `json:"referenceNumber" doc:"Reference shown on statements"`
	CreatedAt                time.Time  `json:"createdAt" doc:"RFC3339 creation time"`
	CompletedAt              *time.Time `json:"completedAt,omitempty" doc:"RFC3339 settlement time"`
}

func fromStorage(t *transaction.Transaction) *Transaction {
	out := &Transaction{
		ID:                       t.ID.String(),
		SecondaryID:              t.StorageKey,
		SourceAccountID:          t.SourceAccountID.String(),
		DestinationAccountNumber: t.DestinationAccountNumber,
		Amount:                   t.Amount.String(),
		Currency:                 t.Currency,
		Type:                     t.Type,
		Status:                   t.Status,
		Description:              t.Description,
		ReferenceNumber:          t.ReferenceNumber,
		CreatedAt:                t.CreatedAt.UTC(),
	}
	if t.CompletedAt.Valid {
		completedAt := t.CompletedAt.Time.UTC()
		out.CompletedAt = &completedAt
	}
	return out
}

// TransactionEnvelope wraps a single transaction in a response body.
type TransactionEnvelope struct {
	Transaction *Transaction `json:"transaction" doc:"The transaction"`
}
