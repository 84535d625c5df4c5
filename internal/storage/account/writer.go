package account

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/carson-networks/banking-core/internal/storage/sqlconfig"
)

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

// FindByIDForUpdate reads an account and locks its row until the
// transaction ends.
func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Account, error) {
	return w.findOne(ctx, "id", id, true)
}

func (w *Writer) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	_, err := psql.Update(
		um.Table(psql.Quote(sqlconfig.AccountsTable)),
		um.SetCol("balance").ToArg(balance),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	).Exec(ctx, w.exec)
	return err
}
