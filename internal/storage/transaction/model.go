package transaction

import (
	"database/sql"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Status values stored in the status column.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

const TypeTransfer = "TRANSFER"

// Transaction represents a transaction record. SourceOwnerID is read from
// the source account and is not stored on the row.
type Transaction struct {
	ID                       uuid.UUID       `db:"id"`
	StorageKey               string          `db:"storage_key"`
	SourceAccountID          uuid.UUID       `db:"source_account_id"`
	SourceOwnerID            string          `db:"-"`
	DestinationAccountNumber string          `db:"destination_account_number"`
	Amount                   decimal.Decimal `db:"amount"`
	Currency                 string          `db:"currency"`
	Type                     string          `db:"type"`
	Status                   string          `db:"status"`
	Description              string          `db:"description"`
	ReferenceNumber          string          `db:"reference_number"`
	CreatedAt                time.Time       `db:"created_at"`
	CompletedAt              sql.NullTime    `db:"completed_at"`
}

var columns = []string{
	"id", "storage_key", "source_account_id", "destination_account_number",
	"amount", "currency", "type", "status", "description", "reference_number",
	"created_at", "completed_at",
}

// insertColumns leaves out created_at, which the database fills in.
var insertColumns = columns[:10]
