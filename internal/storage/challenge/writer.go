package challenge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/banking-core/internal/domain"
	"github.com/carson-networks/banking-core/internal/storage/sqlconfig"
)

type Writer struct {
	exec bob.Executor
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{exec: tx}
}

func (w *Writer) Insert(ctx context.Context, c *Challenge) error {
	_, err := psql.Insert(
		im.Into(psql.Quote(sqlconfig.ChallengesTable), "transaction_id", "code_hash", "expires_at"),
		im.Values(psql.Arg(c.TransactionID, c.CodeHash, c.ExpiresAt)),
	).Exec(ctx, w.exec)
	return err
}

// FindForUpdate reads the challenge of a transaction and locks it.
func (w *Writer) FindForUpdate(ctx context.Context, transactionID uuid.UUID) (*Challenge, error) {
	query := psql.Select(
		sm.Columns(sqlconfig.Columns(columns...)...),
		sm.From(psql.Quote(sqlconfig.ChallengesTable)),
		sm.Where(psql.Quote("transaction_id").EQ(psql.Arg(transactionID))),
		sm.ForUpdate(),
	)
	row, err := bob.One(ctx, w.exec, query, scan.StructMapper[Challenge]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("challenge %s: %w", transactionID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (w *Writer) RecordAttempt(ctx context.Context, transactionID uuid.UUID) error {
	return w.update(ctx, transactionID, um.SetCol("attempts").To(psql.Raw("attempts + 1")))
}

// Consume closes the challenge so the code cannot be used again.
func (w *Writer) Consume(ctx context.Context, transactionID uuid.UUID, at time.Time) error {
	return w.update(ctx, transactionID, um.SetCol("consumed_at").ToArg(at))
}

func (w *Writer) update(ctx context.Context, transactionID uuid.UUID, set bob.Mod[*dialect.UpdateQuery]) error {
	_, err := psql.Update(
		um.Table(psql.Quote(sqlconfig.ChallengesTable)),
		set,
		um.Where(psql.Quote("transaction_id").EQ(psql.Arg(transactionID))),
	).Exec(ctx, w.exec)
	return err
}
