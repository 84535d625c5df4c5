package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/banking-core/internal/domain"
	"github.com/carson-networks/banking-core/internal/storage/sqlconfig"
)

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return r.findOne(ctx, "id", id, false)
}

// FindByStorageKey looks a transaction up by the key the ledger exposes
// instead of the UUID.
func (r *Reader) FindByStorageKey(ctx context.Context, key string) (*Transaction, error) {
	return r.findOne(ctx, "storage_key", key, false)
}

func (r *Reader) findOne(ctx context.Context, column string, value any, forUpdate bool) (*Transaction, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(sqlconfig.Columns(columns...)...),
		sm.From(psql.Quote(sqlconfig.TransactionsTable)),
		sm.Where(psql.Quote(column).EQ(psql.Arg(value))),
	}
	if forUpdate {
		queryMods = append(queryMods, sm.ForUpdate())
	}

	row, err := bob.One(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[Transaction]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %v: %w", value, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	owner, err := bob.One(ctx, r.exec, psql.Select(
		sm.Columns(psql.Quote("owner_id")),
		sm.From(psql.Quote(sqlconfig.AccountsTable)),
		sm.Where(psql.Quote("id").EQ(psql.Arg(row.SourceAccountID))),
	), scan.SingleColumnMapper[string])
	if err != nil {
		return nil, fmt.Errorf("transaction %v: source owner: %w", value, err)
	}
	row.SourceOwnerID = owner
	return &row, nil
}
