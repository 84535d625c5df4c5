package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the business reason for a money movement.
type TransactionType int8

const (
	TransactionTypeTransfer TransactionType = iota
	TransactionTypeDeposit
	TransactionTypeWithdrawal
	TransactionTypePayment
	TransactionTypeTopUp
)

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeTransfer:
		return "TRANSFER"
	case TransactionTypeDeposit:
		return "DEPOSIT"
	case TransactionTypeWithdrawal:
		return "WITHDRAWAL"
	case TransactionTypePayment:
		return "PAYMENT"
	case TransactionTypeTopUp:
		return "TOPUP"
	default:
		return fmt.Sprintf("TransactionType(%d)", int8(t))
	}
}

// ParseTransactionType converts the backend representation of a transaction type.
func ParseTransactionType(s string) (TransactionType, error) {
	switch s {
	case "TRANSFER":
		return TransactionTypeTransfer, nil
	case "DEPOSIT":
		return TransactionTypeDeposit, nil
	case "WITHDRAWAL":
		return TransactionTypeWithdrawal, nil
	case "PAYMENT":
		return TransactionTypePayment, nil
	case "TOPUP":
		return TransactionTypeTopUp, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTransactionType, s)
	}
}

// TransactionStatus is the display-facing status of a transaction.
type TransactionStatus int8

const (
	TransactionStatusPending TransactionStatus = iota
	TransactionStatusCompleted
	TransactionStatusFailed
	TransactionStatusCancelled
)

func (s TransactionStatus) String() string {
	switch s {
	case TransactionStatusPending:
		return "PENDING"
	case TransactionStatusCompleted:
		return "COMPLETED"
	case TransactionStatusFailed:
		return "FAILED"
	case TransactionStatusCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("TransactionStatus(%d)", int8(s))
	}
}

// IsTerminal reports whether no further status change can happen.
func (s TransactionStatus) IsTerminal() bool {
	return s != TransactionStatusPending
}

// ParseTransactionStatus converts the backend representation of a transaction status.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch s {
	case "PENDING":
		return TransactionStatusPending, nil
	case "COMPLETED":
		return TransactionStatusCompleted, nil
	case "FAILED":
		return TransactionStatusFailed, nil
	case "CANCELLED":
		return TransactionStatusCancelled, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTransactionStatus, s)
	}
}

// Transaction is a money movement as known to the backend.
// ID is the primary key; SecondaryID is the alternate key some backend
// subsystems expose the same transaction under.
type Transaction struct {
	ID                       string
	SecondaryID              string
	SourceAccountID          string
	DestinationAccountNumber string
	Amount                   decimal.Decimal
	Currency                 string
	Type                     TransactionType
	Status                   TransactionStatus
	Description              string
	ReferenceNumber          string
	CreatedAt                time.Time
	CompletedAt              *time.Time
}
