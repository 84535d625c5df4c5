package sandbox

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/banking-core/internal/storage"
	"github.com/carson-networks/banking-core/internal/storage/account"
	"github.com/carson-networks/banking-core/internal/storage/challenge"
	"github.com/carson-networks/banking-core/internal/storage/transaction"
)

// Store is the persistence the bank needs.
type Store interface {
	AccountsByOwner(ctx context.Context, ownerID string) ([]*account.Account, error)
	TransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	TransactionByKey(ctx context.Context, key string) (*transaction.Transaction, error)
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the set of reads and writes made inside one database transaction.
type Tx interface {
	AccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	AccountByNumber(ctx context.Context, number string) (*account.Account, error)
	AccountByIDForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error

	TransactionForUpdate(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	InsertTransaction(ctx context.Context, t *transaction.Transaction) error
	UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status string, completedAt time.Time) error

	InsertChallenge(ctx context.Context, c *challenge.Challenge) error
	ChallengeForUpdate(ctx context.Context, transactionID uuid.UUID) (*challenge.Challenge, error)
	RecordAttempt(ctx context.Context, transactionID uuid.UUID) error
	ConsumeChallenge(ctx context.Context, transactionID uuid.UUID, at time.Time) error
}

type postgresStore struct {
	storage *storage.Storage
}

// NewPostgresStore adapts the Postgres storage layer to Store.
func NewPostgresStore(s *storage.Storage) Store {
	return &postgresStore{storage: s}
}

func (p *postgresStore) AccountsByOwner(ctx context.Context, ownerID string) ([]*account.Account, error) {
	return p.storage.Read().Accounts.ListByOwner(ctx, ownerID)
}

func (p *postgresStore) TransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return p.storage.Read().Transactions.FindByID(ctx, id)
}

func (p *postgresStore) TransactionByKey(ctx context.Context, key string) (*transaction.Transaction, error) {
	return p.storage.Read().Transactions.FindByStorageKey(ctx, key)
}

func (p *postgresStore) InTx(ctx context.Context, fn func(Tx) error) error {
	return p.storage.InTx(ctx, func(w *storage.Writer) error {
		return fn(writerTx{w: w})
	})
}

type writerTx struct {
	w *storage.Writer
}

func (t writerTx) AccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return t.w.Account.FindByID(ctx, id)
}

func (t writerTx) AccountByNumber(ctx context.Context, number string) (*account.Account, error) {
	return t.w.Account.FindByNumber(ctx, number)
}

func (t writerTx) AccountByIDForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return t.w.Account.FindByIDForUpdate(ctx, id)
}

func (t writerTx) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return t.w.Account.UpdateBalance(ctx, id, balance)
}

func (t writerTx) TransactionForUpdate(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return t.w.Transaction.FindByIDForUpdate(ctx, id)
}

func (t writerTx) InsertTransaction(ctx context.Context, txn *transaction.Transaction) error {
	return t.w.Transaction.Insert(ctx, txn)
}

func (t writerTx) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status string, completedAt time.Time) error {
	return t.w.Transaction.UpdateStatus(ctx, id, status, completedAt)
}

func (t writerTx) InsertChallenge(ctx context.Context, c *challenge.Challenge) error {
	return t.w.Challenge.Insert(ctx, c)
}

func (t writerTx) ChallengeForUpdate(ctx context.Context, transactionID uuid.UUID) (*challenge.Challenge, error) {
	return t.w.Challenge.FindForUpdate(ctx, transactionID)
}

func (t writerTx) RecordAttempt(ctx context.Context, transactionID uuid.UUID) error {
	return t.w.Challenge.RecordAttempt(ctx, transactionID)
}

func (t writerTx) ConsumeChallenge(ctx context.Context, transactionID uuid.UUID, at time.Time) error {
	return t.w.Challenge.Consume(ctx, transactionID, at)
}
