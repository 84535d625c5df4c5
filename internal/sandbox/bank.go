package sandbox

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/carson-networks/banking-core/internal/config"
	"github.com/carson-networks/banking-core/internal/domain"
	"github.com/carson-networks/banking-core/internal/storage/account"
	"github.com/carson-networks/banking-core/internal/storage/challenge"
	"github.com/carson-networks/banking-core/internal/storage/transaction"
)

const challengeMessage = "Enter the 6-digit code sent to your registered phone number"

// Options are the sandbox's own rules. They are independent of the client
// policy so the two can disagree, as a real backend would.
type Options struct {
	// Transfers at or above StepUpThreshold need an OTP.
	StepUpThreshold decimal.Decimal
	OTPTTL          time.Duration
	MaxAttempts     int
	HashCost        int
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		StepUpThreshold: cfg.StepUpThreshold,
		OTPTTL:          cfg.OTPTTL,
		MaxAttempts:     5,
		HashCost:        bcrypt.DefaultCost,
	}
}

// TransferRequest is a transfer as received over the wire.
type TransferRequest struct {
	FromAccountID   string
	ToAccountNumber string
	Amount          decimal.Decimal
	Description     string
}

// TransferOutcome is either a challenge or a completed transaction.
type TransferOutcome struct {
	OTPRequired bool
	Message     string
	Transaction *transaction.Transaction
}

type BankOption func(*Bank)

func WithClock(now func() time.Time) BankOption {
	return func(b *Bank) {
		b.now = now
	}
}

// WithCodeGenerator replaces the random OTP source.
func WithCodeGenerator(newCode func() (string, error)) BankOption {
	return func(b *Bank) {
		b.newCode = newCode
	}
}

// Bank implements the backend side of transfers and OTP verification.
type Bank struct {
	store   Store
	opts    Options
	now     func() time.Time
	newCode func() (string, error)
	logger  *logrus.Logger
}

func NewBank(store Store, opts Options, logger *logrus.Logger, bankOpts ...BankOption) *Bank {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}

	b := &Bank{
		store:   store,
		opts:    opts,
		now:     time.Now,
		newCode: randomCode,
		logger:  logger,
	}
	for _, opt := range bankOpts {
		opt(b)
	}
	return b
}

// Accounts lists the accounts of ownerID.
func (b *Bank) Accounts(ctx context.Context, ownerID string) ([]*account.Account, error) {
	return b.store.AccountsByOwner(ctx, ownerID)
}

// Transaction finds one of ownerID's transactions by its UUID or, failing
// that format, by its storage key.
func (b *Bank) Transaction(ctx context.Context, ownerID, key string) (*transaction.Transaction, error) {
	var (
		txn *transaction.Transaction
		err error
	)
	if id, parseErr := uuid.FromString(key); parseErr == nil {
		txn, err = b.store.TransactionByID(ctx, id)
	} else {
		txn, err = b.store.TransactionByKey(ctx, key)
	}
	if err != nil {
		return nil, err
	}
	if txn.SourceOwnerID != ownerID {
		return nil, fmt.Errorf("transaction %s: %w", key, domain.ErrNotFound)
	}
	return txn, nil
}

// Transfer records a transfer from one of ownerID's accounts. Amounts at or
// above the step-up threshold stay pending behind an OTP challenge; smaller
// ones settle immediately.
func (b *Bank) Transfer(ctx context.Context, ownerID string, req TransferRequest) (*TransferOutcome, error) {
	if !req.Amount.IsPositive() {
		return nil, refuseTransfer("amount must be positive")
	}
	fromID, err := uuid.FromString(req.FromAccountID)
	if err != nil {
		return nil, refuseTransfer("source account not found")
	}
	destination := strings.TrimSpace(req.ToAccountNumber)

	log := b.logger.WithFields(logrus.Fields{
		"ownerID":     ownerID,
		"fromAccount": req.FromAccountID,
		"amount":      req.Amount.String(),
	})

	var outcome *TransferOutcome
	err = b.store.InTx(ctx, func(tx Tx) error {
		source, err := tx.AccountByID(ctx, fromID)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && source.OwnerID != ownerID) {
			return refuseTransfer("source account not found")
		}
		if err != nil {
			return err
		}
		if !source.Active {
			return refuseTransfer("source account is inactive")
		}

		dest, err := tx.AccountByNumber(ctx, destination)
		if errors.Is(err, domain.ErrNotFound) {
			return refuseTransfer("destination account not found")
		}
		if err != nil {
			return err
		}
		if dest.ID == source.ID {
			return refuseTransfer("cannot transfer to the same account")
		}
		if source.Balance.LessThan(req.Amount) {
			return refuseTransfer("insufficient funds")
		}

		txn, err := b.insertPending(ctx, tx, source, dest, req)
		if err != nil {
			return err
		}

		if req.Amount.LessThan(b.opts.StepUpThreshold) {
			if err := b.settle(ctx, tx, txn); err != nil {
				return err
			}
			outcome = &TransferOutcome{Transaction: txn}
			return nil
		}

		code, err := b.issueChallenge(ctx, tx, txn.ID)
		if err != nil {
			return err
		}
		// There is no SMS gateway in the sandbox; the log is the delivery channel.
		log.WithFields(logrus.Fields{
			"transactionID": txn.ID.String(),
			"otpCode":       code,
		}).Info("Sandbox.Transfer.challengeIssued")

		outcome = &TransferOutcome{OTPRequired: true, Message: challengeMessage, Transaction: txn}
		return nil
	})
	if err != nil {
		log.WithError(err).Info("Sandbox.Transfer.refused")
		return nil, err
	}
	return outcome, nil
}

// VerifyOTP checks a code against the challenge of a pending transfer and
// settles the transfer when it matches. Failed attempts are persisted even
// though an error is returned.
func (b *Bank) VerifyOTP(ctx context.Context, ownerID, transactionID, code string) (*transaction.Transaction, error) {
	id, err := uuid.FromString(transactionID)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, domain.ErrNotFound)
	}
	log := b.logger.WithFields(logrus.Fields{
		"ownerID":       ownerID,
		"transactionID": transactionID,
	})

	var (
		settled *transaction.Transaction
		refusal error
	)
	err = b.store.InTx(ctx, func(tx Tx) error {
		txn, err := tx.TransactionForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if txn.SourceOwnerID != ownerID {
			return fmt.Errorf("transaction %s: %w", transactionID, domain.ErrNotFound)
		}
		ch, err := tx.ChallengeForUpdate(ctx, id)
		if err != nil {
			return err
		}

		now := b.now()
		switch {
		case ch.ConsumedAt.Valid || txn.Status != transaction.StatusPending:
			refusal = failVerification("challenge is closed")
			return nil
		case !now.Before(ch.ExpiresAt):
			refusal = failVerification("code expired")
			return b.close(ctx, tx, txn, now)
		case ch.Attempts >= b.opts.MaxAttempts:
			refusal = failVerification("too many attempts")
			return b.close(ctx, tx, txn, now)
		}

		if bcrypt.CompareHashAndPassword([]byte(ch.CodeHash), []byte(code)) != nil {
			refusal = failVerification("code mismatch")
			if err := tx.RecordAttempt(ctx, id); err != nil {
				return err
			}
			if ch.Attempts+1 >= b.opts.MaxAttempts {
				return b.close(ctx, tx, txn, now)
			}
			return nil
		}

		if err := b.settle(ctx, tx, txn); err != nil {
			var rejection *RejectionError
			if !errors.As(err, &rejection) {
				return err
			}
			refusal = failVerification(rejection.Reason)
			return b.close(ctx, tx, txn, now)
		}
		if err := tx.ConsumeChallenge(ctx, id, now); err != nil {
			return err
		}
		settled = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	if refusal != nil {
		log.WithError(refusal).Info("Sandbox.VerifyOTP.refused")
		return nil, refusal
	}

	log.Info("Sandbox.VerifyOTP.settled")
	return settled, nil
}

func (b *Bank) insertPending(ctx context.Context, tx Tx, source, dest *account.Account, req TransferRequest) (*transaction.Transaction, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	raw := id.Bytes()

	txn := &transaction.Transaction{
		ID:                       id,
		StorageKey:               fmt.Sprintf("TRX%X", raw[:6]),
		SourceAccountID:          source.ID,
		SourceOwnerID:            source.OwnerID,
		DestinationAccountNumber: dest.AccountNumber,
		Amount:                   req.Amount,
		Currency:                 source.Currency,
		Type:                     transaction.TypeTransfer,
		Status:                   transaction.StatusPending,
		Description:              req.Description,
		ReferenceNumber:          fmt.Sprintf("REF%s%X", b.now().UTC().Format("20060102"), raw[6:9]),
	}
	if err := tx.InsertTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return txn, nil
}

func (b *Bank) issueChallenge(ctx context.Context, tx Tx, transactionID uuid.UUID) (string, error) {
	code, err := b.newCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), b.opts.HashCost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}

	err = tx.InsertChallenge(ctx, &challenge.Challenge{
		TransactionID: transactionID,
		CodeHash:      string(hash),
		ExpiresAt:     b.now().Add(b.opts.OTPTTL),
	})
	if err != nil {
		return "", fmt.Errorf("insert challenge: %w", err)
	}
	return code, nil
}

// settle moves the money and completes txn. Both rows are locked in ID
// order so opposite transfers cannot deadlock.
func (b *Bank) settle(ctx context.Context, tx Tx, txn *transaction.Transaction) error {
	dest, err := tx.AccountByNumber(ctx, txn.DestinationAccountNumber)
	if err != nil {
		return err
	}

	first, second := txn.SourceAccountID, dest.ID
	if bytes.Compare(first.Bytes(), second.Bytes()) > 0 {
		first, second = second, first
	}
	locked := make(map[uuid.UUID]*account.Account, 2)
	for _, id := range []uuid.UUID{first, second} {
		a, err := tx.AccountByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		locked[id] = a
	}

	source, dest := locked[txn.SourceAccountID], locked[dest.ID]
	if !source.Active {
		return refuseTransfer("source account is inactive")
	}
	if source.Balance.LessThan(txn.Amount) {
		return refuseTransfer("insufficient funds")
	}

	if err := tx.UpdateBalance(ctx, source.ID, source.Balance.Sub(txn.Amount)); err != nil {
		return err
	}
	if err := tx.UpdateBalance(ctx, dest.ID, dest.Balance.Add(txn.Amount)); err != nil {
		return err
	}

	now := b.now()
	if err := tx.UpdateTransactionStatus(ctx, txn.ID, transaction.StatusCompleted, now); err != nil {
		return err
	}
	txn.Status = transaction.StatusCompleted
	txn.CompletedAt.Time, txn.CompletedAt.Valid = now, true
	return nil
}

// close fails a pending transfer and its challenge.
func (b *Bank) close(ctx context.Context, tx Tx, txn *transaction.Transaction, now time.Time) error {
	if err := tx.UpdateTransactionStatus(ctx, txn.ID, transaction.StatusFailed, time.Time{}); err != nil {
		return err
	}
	return tx.ConsumeChallenge(ctx, txn.ID, now)
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
