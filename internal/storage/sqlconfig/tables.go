package sqlconfig

import (
	"github.com/stephenafamo/bob/dialect/psql"
)

const (
	AccountsTable     = "accounts"
	TransactionsTable = "transactions"
	ChallengesTable   = "otp_challenges"
)

// Columns quotes column names for sm.Columns and im.Returning.
func Columns(names ...string) []any {
	cols := make([]any, len(names))
	for i, name := range names {
		cols[i] = psql.Quote(name)
	}
	return cols
}
