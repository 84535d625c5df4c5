package account

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

// ListByOwner returns every account of ownerID ordered by account number.
func (r *Reader) ListByOwner(ctx context.Context, ownerID string) ([]*Account, error) {
	query := psql.Select(
		sm.Columns(sqlconfig.Columns(columns...)...),
		sm.From(psql.Quote(sqlconfig.AccountsTable)),
		sm.Where(psql.Quote("owner_id").EQ(psql.Arg(ownerID))),
		sm.OrderBy(psql.Quote("account_number")).Asc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)
	rows, err := bob.All(ctx, r.exec, query, scan.StructMapper[Account]())
	if err != nil {
		return nil, err
	}

	accounts := make([]*Account, len(rows))
	for i := range rows {
		accounts[i] = &rows[i]
	}
	return accounts, nil
}

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return r.findOne(ctx, "id", id, false)
}

func (r *Reader) FindByNumber(ctx context.Context, number string) (*Account, error) {
	return r.findOne(ctx, "account_number", number, false)
}

func (r *Reader) findOne(ctx context.Context, column string, value any, forUpdate bool) (*Account, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(sqlconfig.Columns(columns...)...),
		sm.From(psql.Quote(sqlconfig.AccountsTable)),
		sm.Where(psql.Quote(column).EQ(psql.Arg(value))),
	}
	if forUpdate {
		queryMods = append(queryMods, sm.ForUpdate())
	}

	row, err := bob.One(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[Account]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %v: %w", value, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
