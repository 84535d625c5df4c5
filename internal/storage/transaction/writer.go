package transaction

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/banking-core/internal/storage/sqlconfig"
)

// ErrDuplicateKey is returned when the generated storage key is taken.
var ErrDuplicateKey = errors.New("transaction storage key already exists")

type Writer struct {
	Reader
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		Reader: Reader{
			exec: tx,
		},
	}
}

func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return w.findOne(ctx, "id", id, true)
}

// Insert stores a new transaction. CreatedAt is set by the database and
// copied back onto t.
func (w *Writer) Insert(ctx context.Context, t *Transaction) error {
	query := psql.Insert(
		im.Into(psql.Quote(sqlconfig.TransactionsTable), insertColumns...),
		im.Values(psql.Arg(
			t.ID, t.StorageKey, t.SourceAccountID, t.DestinationAccountNumber,
			t.Amount, t.Currency, t.Type, t.Status, t.Description, t.ReferenceNumber,
		)),
		im.Returning(psql.Quote("created_at")),
	)
	createdAt, err := bob.One(ctx, w.exec, query, scan.SingleColumnMapper[time.Time])
	if sqlconfig.IsUniqueViolation(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return err
	}
	t.CreatedAt = createdAt
	return nil
}

// UpdateStatus moves a transaction to status. A zero completedAt leaves the
// column empty.
func (w *Writer) UpdateStatus(ctx context.Context, id uuid.UUID, status string, completedAt time.Time) error {
	completed := sql.NullTime{Time: completedAt, Valid: !completedAt.IsZero()}
	_, err := psql.Update(
		um.Table(psql.Quote(sqlconfig.TransactionsTable)),
		um.SetCol("status").ToArg(status),
		um.SetCol("completed_at").ToArg(completed),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	).Exec(ctx, w.exec)
	return err
}
