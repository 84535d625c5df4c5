package sandbox

import (
	"context"
	"maps"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/carson-networks/banking-core/internal/domain"
	"github.com/carson-networks/banking-core/internal/storage/account"
	"github.com/carson-networks/banking-core/internal/storage/challenge"
	"github.com/carson-networks/banking-core/internal/storage/transaction"
)

type fakeState struct {
	accounts     map[uuid.UUID]account.Account
	transactions map[uuid.UUID]transaction.Transaction
	challenges   map[uuid.UUID]challenge.Challenge
}

func (s fakeState) clone() fakeState {
	return fakeState{
		accounts:     maps.Clone(s.accounts),
		transactions: maps.Clone(s.transactions),
		challenges:   maps.Clone(s.challenges),
	}
}

func (s fakeState) withOwner(t transaction.Transaction) *transaction.Transaction {
	t.SourceOwnerID = s.accounts[t.SourceAccountID].OwnerID
	return &t
}

// fakeStore keeps everything in memory. InTx works on a copy that replaces
// the committed state only when fn succeeds.
type fakeStore struct {
	mu    sync.Mutex
	state fakeState
	locks []uuid.UUID
}

func (f *fakeStore) AccountsByOwner(_ context.Context, ownerID string) ([]*account.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*account.Account
	for _, a := range f.state.accounts {
		if a.OwnerID == ownerID {
			a := a
			out = append(out, &a)
		}
	}
	return out, nil
}

func (f *fakeStore) TransactionByID(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.state.transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return f.state.withOwner(t), nil
}

func (f *fakeStore) TransactionByKey(_ context.Context, key string) (*transaction.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.state.transactions {
		if t.StorageKey == key {
			return f.state.withOwner(t), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) InTx(_ context.Context, fn func(Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	working := f.state.clone()
	if err := fn(&fakeTx{state: working, locks: &f.locks}); err != nil {
		return err
	}
	f.state = working
	return nil
}

func (f *fakeStore) account(id uuid.UUID) account.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.accounts[id]
}

func (f *fakeStore) transaction(id uuid.UUID) transaction.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.transactions[id]
}

func (f *fakeStore) challenge(id uuid.UUID) challenge.Challenge {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.challenges[id]
}

type fakeTx struct {
	state fakeState
	locks *[]uuid.UUID
}

func (t *fakeTx) AccountByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	a, ok := t.state.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (t *fakeTx) AccountByNumber(_ context.Context, number string) (*account.Account, error) {
	for _, a := range t.state.accounts {
		if a.AccountNumber == number {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *fakeTx) AccountByIDForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	*t.locks = append(*t.locks, id)
	return t.AccountByID(ctx, id)
}

func (t *fakeTx) UpdateBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	a := t.state.accounts[id]
	a.Balance = balance
	t.state.accounts[id] = a
	return nil
}

func (t *fakeTx) TransactionForUpdate(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	txn, ok := t.state.transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t.state.withOwner(txn), nil
}

func (t *fakeTx) InsertTransaction(_ context.Context, txn *transaction.Transaction) error {
	txn.CreatedAt = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	t.state.transactions[txn.ID] = *txn
	return nil
}

func (t *fakeTx) UpdateTransactionStatus(_ context.Context, id uuid.UUID, status string, completedAt time.Time) error {
	txn := t.state.transactions[id]
	txn.Status = status
	txn.CompletedAt.Time, txn.CompletedAt.Valid = completedAt, !completedAt.IsZero()
	t.state.transactions[id] = txn
	return nil
}

func (t *fakeTx) InsertChallenge(_ context.Context, c *challenge.Challenge) error {
	t.state.challenges[c.TransactionID] = *c
	return nil
}

func (t *fakeTx) ChallengeForUpdate(_ context.Context, id uuid.UUID) (*challenge.Challenge, error) {
	c, ok := t.state.challenges[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (t *fakeTx) RecordAttempt(_ context.Context, id uuid.UUID) error {
	c := t.state.challenges[id]
	c.Attempts++
	t.state.challenges[id] = c
	return nil
}

func (t *fakeTx) ConsumeChallenge(_ context.Context, id uuid.UUID, at time.Time) error {
	c := t.state.challenges[id]
	c.ConsumedAt.Time, c.ConsumedAt.Valid = at, true
	t.state.challenges[id] = c
	return nil
}

var (
	checkingID = uuid.Must(uuid.FromString("7b0c3a52-6f0e-4c1a-9f43-0a8d6c1f2e01"))
	inactiveID = uuid.Must(uuid.FromString("7b0c3a52-6f0e-4c1a-9f43-0a8d6c1f2e02"))
	payeeID    = uuid.Must(uuid.FromString("7b0c3a52-6f0e-4c1a-9f43-0a8d6c1f2e04"))
	strangerID = uuid.Must(uuid.FromString("7b0c3a52-6f0e-4c1a-9f43-0a8d6c1f2e09"))
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestBank(t *testing.T) (*Bank, *fakeStore, *testClock) {
	t.Helper()
	store := &fakeStore{state: fakeState{
		accounts: map[uuid.UUID]account.Account{
			checkingID: {ID: checkingID, OwnerID: "demo-owner", AccountNumber: "1000000001", Type: "CHECKING", Balance: decimal.NewFromInt(25000000), Currency: "IDR", Active: true},
			inactiveID: {ID: inactiveID, OwnerID: "demo-owner", AccountNumber: "1000000009", Type: "CHECKING", Balance: decimal.NewFromInt(5000000), Currency: "IDR"},
			payeeID:    {ID: payeeID, OwnerID: "demo-payee", AccountNumber: "2000000001", Type: "CHECKING", Balance: decimal.NewFromInt(1000000), Currency: "IDR", Active: true},
			strangerID: {ID: strangerID, OwnerID: "stranger", AccountNumber: "3000000001", Type: "CHECKING", Balance: decimal.NewFromInt(1000000), Currency: "IDR", Active: true},
		},
		transactions: map[uuid.UUID]transaction.Transaction{},
		challenges:   map[uuid.UUID]challenge.Challenge{},
	}}
	clock := &testClock{now: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}
	logger, _ := test.NewNullLogger()

	bank := NewBank(store, Options{
		StepUpThreshold: decimal.NewFromInt(1000000),
		OTPTTL:          5 * time.Minute,
		MaxAttempts:     2,
		HashCost:        bcrypt.MinCost,
	}, logger, WithClock(clock.Now), WithCodeGenerator(func() (string, error) { return "123456", nil }))
	return bank, store, clock
}

func transferOf(amount int64) TransferRequest {
	return TransferRequest{
		FromAccountID:   checkingID.String(),
		ToAccountNumber: "2000000001",
		Amount:          decimal.NewFromInt(amount),
		Description:     "rent",
	}
}

func requireRejection(t *testing.T, err error, kind error, reason string) {
	t.Helper()
	require.ErrorIs(t, err, kind)
	assert.Equal(t, reason, err.Error())
}

// -- Transfer tests --

func TestTransfer_BelowThresholdSettles(t *testing.T) {
	bank, store, _ := newTestBank(t)

	outcome, err := bank.Transfer(context.Background(), "demo-owner", transferOf(500000))

	require.NoError(t, err)
	assert.False(t, outcome.OTPRequired)
	txn := outcome.Transaction
	assert.Equal(t, transaction.StatusCompleted, txn.Status)
	assert.True(t, txn.CompletedAt.Valid)
	assert.True(t, strings.HasPrefix(txn.StorageKey, "TRX"))
	assert.Len(t, txn.StorageKey, 15)
	assert.True(t, strings.HasPrefix(txn.ReferenceNumber, "REF20250701"))

	assert.True(t, store.account(checkingID).Balance.Equal(decimal.NewFromInt(24500000)))
	assert.True(t, store.account(payeeID).Balance.Equal(decimal.NewFromInt(1500000)))
}

func TestTransfer_LocksAccountsInIDOrder(t *testing.T) {
	bank, store, _ := newTestBank(t)

	_, err := bank.Transfer(context.Background(), "demo-payee", TransferRequest{
		FromAccountID:   payeeID.String(),
		ToAccountNumber: "1000000001",
		Amount:          decimal.NewFromInt(500000),
	})

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{checkingID, payeeID}, store.locks)
	assert.True(t, store.account(payeeID).Balance.Equal(decimal.NewFromInt(500000)))
	assert.True(t, store.account(checkingID).Balance.Equal(decimal.NewFromInt(25500000)))
}

func TestTransfer_AtThresholdChallenges(t *testing.T) {
	bank, store, clock := newTestBank(t)

	outcome, err := bank.Transfer(context.Background(), "demo-owner", transferOf(1000000))

	require.NoError(t, err)
	assert.True(t, outcome.OTPRequired)
	assert.NotEmpty(t, outcome.Message)
	assert.Equal(t, transaction.StatusPending, store.transaction(outcome.Transaction.ID).Status)

	ch := store.challenge(outcome.Transaction.ID)
	assert.NotEqual(t, "123456", ch.CodeHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(ch.CodeHash), []byte("123456")))
	assert.Equal(t, clock.now.Add(5*time.Minute), ch.ExpiresAt)

	assert.True(t, store.account(checkingID).Balance.Equal(decimal.NewFromInt(25000000)))
}

func TestTransfer_Refusals(t *testing.T) {
	tests := []struct {
		name   string
		owner  string
		mutate func(*TransferRequest)
		reason string
	}{
		{"zero amount", "demo-owner", func(r *TransferRequest) { r.Amount = decimal.Zero }, "amount must be positive"},
		{"bad source id", "demo-owner", func(r *TransferRequest) { r.FromAccountID = "1000000001" }, "source account not found"},
		{"someone else's account", "demo-owner", func(r *TransferRequest) { r.FromAccountID = strangerID.String() }, "source account not found"},
		{"inactive source", "demo-owner", func(r *TransferRequest) { r.FromAccountID = inactiveID.String() }, "source account is inactive"},
		{"unknown destination", "demo-owner", func(r *TransferRequest) { r.ToAccountNumber = "9999999999" }, "destination account not found"},
		{"same account", "demo-owner", func(r *TransferRequest) { r.ToAccountNumber = "1000000001" }, "cannot transfer to the same account"},
		{"insufficient funds", "demo-owner", func(r *TransferRequest) { r.Amount = decimal.NewFromInt(25000001) }, "insufficient funds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank, store, _ := newTestBank(t)
			req := transferOf(500000)
			tt.mutate(&req)

			outcome, err := bank.Transfer(context.Background(), tt.owner, req)

			requireRejection(t, err, ErrTransferRefused, tt.reason)
			assert.Nil(t, outcome)
			assert.Empty(t, store.state.transactions)
		})
	}
}

// -- VerifyOTP tests --

func challengeTransfer(t *testing.T, bank *Bank) uuid.UUID {
	t.Helper()
	outcome, err := bank.Transfer(context.Background(), "demo-owner", transferOf(2000000))
	require.NoError(t, err)
	require.True(t, outcome.OTPRequired)
	return outcome.Transaction.ID
}

func TestVerifyOTP_Settles(t *testing.T) {
	bank, store, _ := newTestBank(t)
	id := challengeTransfer(t, bank)

	txn, err := bank.VerifyOTP(context.Background(), "demo-owner", id.String(), "123456")

	require.NoError(t, err)
	assert.Equal(t, transaction.StatusCompleted, txn.Status)
	assert.True(t, store.challenge(id).ConsumedAt.Valid)
	assert.True(t, store.account(checkingID).Balance.Equal(decimal.NewFromInt(23000000)))
	assert.True(t, store.account(payeeID).Balance.Equal(decimal.NewFromInt(3000000)))

	_, err = bank.VerifyOTP(context.Background(), "demo-owner", id.String(), "123456")
	requireRejection(t, err, ErrVerificationFailed, "challenge is closed")
}

func TestVerifyOTP_MismatchCountsAttempts(t *testing.T) {
	bank, store, _ := newTestBank(t)
	id := challengeTransfer(t, bank)

	_, err := bank.VerifyOTP(context.Background(), "demo-owner", id.String(), "000000")
	requireRejection(t, err, ErrVerificationFailed, "code mismatch")
	assert.Equal(t, 1, store.challenge(id).Attempts)
	assert.Equal(t, transaction.StatusPending, store.transaction(id).Status)

	_, err = bank.VerifyOTP(context.Background(), "demo-owner", id.String(), "111111")
	requireRejection(t, err, ErrVerificationFailed, "code mismatch")
	assert.Equal(t, transaction.StatusFailed, store.transaction(id).Status)

	_, err = bank.VerifyOTP(context.Background(), "demo-owner", id.String(), "123456")
	requireRejection(t, err, ErrVerificationFailed, "challenge is closed")
}

func TestVerifyOTP_Expired(t *testing.T) {
	bank, store, clock := newTestBank(t)
	id := challengeTransfer(t, bank)
	clock.now = clock.now.Add(5 * time.Minute)

	_, err := bank.VerifyOTP(context.Background(), "demo-owner", id.String(), "123456")

	requireRejection(t, err, ErrVerificationFailed, "code expired")
	assert.Equal(t, transaction.StatusFailed, store.transaction(id).Status)
	assert.True(t, store.account(checkingID).Balance.Equal(decimal.NewFromInt(25000000)))
}

func TestVerifyOTP_FundsGoneBeforeVerification(t *testing.T) {
	bank, store, _ := newTestBank(t)
	id := challengeTransfer(t, bank)

	store.mu.Lock()
	drained := store.state.accounts[checkingID]
	drained.Balance = decimal.NewFromInt(1000000)
	store.state.accounts[checkingID] = drained
	store.mu.Unlock()

	_, err := bank.VerifyOTP(context.Background(), "demo-owner", id.String(), "123456")

	requireRejection(t, err, ErrVerificationFailed, "insufficient funds")
	assert.Equal(t, transaction.StatusFailed, store.transaction(id).Status)
}

func TestVerifyOTP_OtherOwner(t *testing.T) {
	bank, _, _ := newTestBank(t)
	id := challengeTransfer(t, bank)

	_, err := bank.VerifyOTP(context.Background(), "stranger", id.String(), "123456")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = bank.VerifyOTP(context.Background(), "demo-owner", "not-a-uuid", "123456")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// -- Lookup tests --

func TestTransaction_ByIDOrStorageKey(t *testing.T) {
	bank, _, _ := newTestBank(t)
	outcome, err := bank.Transfer(context.Background(), "demo-owner", transferOf(500000))
	require.NoError(t, err)
	created := outcome.Transaction

	byID, err := bank.Transaction(context.Background(), "demo-owner", created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.StorageKey, byID.StorageKey)

	byKey, err := bank.Transaction(context.Background(), "demo-owner", created.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byKey.ID)

	_, err = bank.Transaction(context.Background(), "stranger", created.StorageKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = bank.Transaction(context.Background(), "demo-owner", "TRX000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccounts_OwnerOnly(t *testing.T) {
	bank, _, _ := newTestBank(t)

	accounts, err := bank.Accounts(context.Background(), "demo-owner")

	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	for _, a := range accounts {
		assert.Equal(t, "demo-owner", a.OwnerID)
	}
}
