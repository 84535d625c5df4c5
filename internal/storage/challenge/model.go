package challenge

import (
	"database/sql"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Challenge is the OTP issued for one transaction. Only the bcrypt hash of
// the code is stored.
type Challenge struct {
	TransactionID uuid.UUID    `db:"transaction_id"`
	CodeHash      string       `db:"code_hash"`
	ExpiresAt     time.Time    `db:"expires_at"`
	Attempts      int          `db:"attempts"`
	ConsumedAt    sql.NullTime `db:"consumed_at"`
}

var columns = []string{"transaction_id", "code_hash", "expires_at", "attempts", "consumed_at"}
