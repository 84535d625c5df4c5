package storage

import (
	"context"

	"github.com/stephenafamo/bob"

	"github.com/carson-networks/banking-core/internal/storage/account"
	"github.com/carson-networks/banking-core/internal/storage/challenge"
	"github.com/carson-networks/banking-core/internal/storage/transaction"
)

type Writer struct {
	tx          bob.Tx
	Account     *account.Writer
	Transaction *transaction.Writer
	Challenge   *challenge.Writer
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		tx:          tx,
		Account:     account.NewWriter(tx),
		Transaction: transaction.NewWriter(tx),
		Challenge:   challenge.NewWriter(tx),
	}
}

func (w *Writer) Commit() error {
	return w.tx.Commit(context.Background())
}

func (w *Writer) Rollback() error {
	return w.tx.Rollback(context.Background())
}
