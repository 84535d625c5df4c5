package account

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Account represents an account record.
type Account struct {
	ID            uuid.UUID           `db:"id"`
	OwnerID       string              `db:"owner_id"`
	AccountNumber string              `db:"account_number"`
	Type          string              `db:"type"`
	Balance       decimal.Decimal     `db:"balance"`
	InterestRate  decimal.NullDecimal `db:"interest_rate"`
	Currency      string              `db:"currency"`
	Active        bool                `db:"active"`
	CreatedAt     time.Time           `db:"created_at"`
}

var columns = []string{
	"id", "owner_id", "account_number", "type", "balance",
	"interest_rate", "currency", "active", "created_at",
}
