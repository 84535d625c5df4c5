package authorization

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/banking-core/internal/backend"
	"github.com/carson-networks/banking-core/internal/config"
	"github.com/carson-networks/banking-core/internal/domain"
	"github.com/carson-networks/banking-core/internal/metrics"
)

// Gateway is the part of the backend the machine talks to.
type Gateway interface {
	Transfer(ctx context.Context, req backend.TransferRequest) (*backend.TransferResult, error)
	VerifyOTP(ctx context.Context, transactionID, code string) (*domain.Transaction, error)
}

// InitiateRequest describes the transfer the user asked for.
type InitiateRequest struct {
	From            domain.Account
	ToAccountNumber string
	Amount          decimal.Decimal
	Description     string
}

// DefaultRetention is how long finished or abandoned attempts stay
// queryable.
const DefaultRetention = 30 * time.Minute

type Option func(*Machine)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithRetention changes how long finished attempts are kept.
func WithRetention(d time.Duration) Option {
	return func(m *Machine) {
		m.retention = d
	}
}

type attempt struct {
	id            uuid.UUID
	transactionID string
	state         State
	history       []State
	challenge     *AuthorizationContext
	verifying     bool
	endedAt       time.Time
}

// Machine drives transfer attempts through step-up authentication.
// Attempts that reached the backend are tracked by transaction ID; terminal
// ones are kept as tombstones for the retention period so late or repeated
// calls can be reported.
type Machine struct {
	gateway Gateway
	policy  config.Policy
	now       func() time.Time
	retention time.Duration
	logger    *logrus.Logger
	metrics metrics.Collector

	mu       sync.Mutex
	attempts map[string]*attempt
}

func NewMachine(gateway Gateway, policy config.Policy, logger *logrus.Logger, collector metrics.Collector, opts ...Option) *Machine {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}

	m := &Machine{
		gateway:   gateway,
		policy:    policy,
		now:       time.Now,
		retention: DefaultRetention,
		logger:    logger,
		metrics:   collector,
		attempts:  make(map[string]*attempt),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initiate starts a new attempt. Local validation failures end in Rejected
// without a backend call. Transport failures are returned as an error
// matching backend.ErrTransport together with the attempt's last state.
func (m *Machine) Initiate(ctx context.Context, req InitiateRequest) (TransitionResult, error) {
	a := &attempt{
		id:      uuid.Must(uuid.NewV4()),
		state:   StateInitiated,
		history: []State{StateInitiated},
	}
	log := m.logger.WithFields(logrus.Fields{
		"attemptID":   a.id.String(),
		"fromAccount": req.From.ID,
		"amount":      req.Amount.String(),
	})

	if reason, message := m.validate(req); reason != ReasonNone {
		if err := m.advance(a, StateRejected); err != nil {
			return a.result(ReasonNone, ""), err
		}
		log.WithField("reason", reason).Info("AuthorizationMachine.Initiate.rejected")
		return a.result(reason, message), nil
	}
	if err := m.advance(a, StateValidated); err != nil {
		return a.result(ReasonNone, ""), err
	}

	resp, err := m.gateway.Transfer(ctx, backend.TransferRequest{
		FromAccountID:   req.From.ID,
		ToAccountNumber: strings.TrimSpace(req.ToAccountNumber),
		Amount:          req.Amount,
		Description:     req.Description,
	})
	if err != nil {
		if backend.IsTransport(err) {
			log.WithError(err).Warn("AuthorizationMachine.Initiate.transport")
			return a.result(ReasonNone, ""), fmt.Errorf("initiate transfer: %w", err)
		}
		message, ok := backend.RejectionReason(err)
		if !ok {
			message = err.Error()
		}
		log.WithField("backendMessage", message).Info("AuthorizationMachine.Initiate.backendRejected")
		return a.result(ReasonBackendRejected, message), nil
	}

	if resp.OTPRequired {
		if err := m.advance(a, StateOTPRequired); err != nil {
			return a.result(ReasonNone, ""), err
		}
		a.transactionID = resp.TransactionID
		a.challenge = &AuthorizationContext{
			TransactionID:    resp.TransactionID,
			ChallengeMessage: resp.Message,
			Deadline:         m.now().Add(m.policy.ChallengeTTL),
		}
		m.track(a)
		log.WithField("transactionID", a.transactionID).Info("AuthorizationMachine.Initiate.challenge")
		return a.result(ReasonNone, resp.Message), nil
	}

	if err := m.advance(a, StateCompleted); err != nil {
		return a.result(ReasonNone, ""), err
	}
	a.transactionID = resp.TransactionID
	m.track(a)
	log.WithField("transactionID", a.transactionID).Info("AuthorizationMachine.Initiate.completed")

	result := a.result(ReasonNone, "")
	result.Transaction = resp.Transaction
	return result, nil
}

// Verify submits an OTP code for a challenged transaction. It is legal only
// while the attempt is in OTPRequired.
func (m *Machine) Verify(ctx context.Context, transactionID, code string) (TransitionResult, error) {
	m.mu.Lock()
	a, ok := m.attempts[transactionID]
	if !ok {
		m.mu.Unlock()
		return TransitionResult{TransactionID: transactionID}, fmt.Errorf("verify %s: %w", transactionID, ErrUnknownTransaction)
	}
	if a.state != StateOTPRequired {
		result := a.result(ReasonNone, "")
		m.mu.Unlock()
		return result, &TransitionError{Op: "verify", TransactionID: transactionID, From: result.State, To: StateVerified}
	}
	if a.verifying {
		result := a.result(ReasonNone, "")
		m.mu.Unlock()
		return result, fmt.Errorf("verify %s: %w", transactionID, ErrVerifyInFlight)
	}

	log := m.logger.WithFields(logrus.Fields{
		"attemptID":     a.id.String(),
		"transactionID": transactionID,
	})

	if !m.now().Before(a.challenge.Deadline) {
		result, err := m.fail(a, ReasonChallengeExpired, "the verification code has expired")
		m.mu.Unlock()
		log.Info("AuthorizationMachine.Verify.expired")
		return result, err
	}
	if strings.TrimSpace(code) == "" {
		result := a.result(ReasonEmptyCode, "the verification code is empty")
		m.mu.Unlock()
		return result, nil
	}
	if a.challenge.RetryCount >= m.policy.MaxVerifyAttempts {
		result, err := m.fail(a, ReasonTooManyAttempts, "too many verification attempts")
		m.mu.Unlock()
		log.Info("AuthorizationMachine.Verify.tooManyAttempts")
		return result, err
	}
	a.challenge.RetryCount++
	a.verifying = true
	m.mu.Unlock()

	txn, err := m.gateway.VerifyOTP(ctx, transactionID, code)

	m.mu.Lock()
	defer m.mu.Unlock()
	a.verifying = false

	if a.state != StateOTPRequired {
		log.WithField("state", a.state.String()).Info("AuthorizationMachine.Verify.discarded")
		result := a.result(ReasonNone, "")
		result.Discarded = true
		return result, nil
	}

	if err != nil {
		if backend.IsTransport(err) {
			log.WithError(err).Warn("AuthorizationMachine.Verify.transport")
			return a.result(ReasonNone, ""), fmt.Errorf("verify %s: %w", transactionID, err)
		}
		message, ok := backend.RejectionReason(err)
		if !ok {
			message = err.Error()
		}
		log.WithField("backendMessage", message).Info("AuthorizationMachine.Verify.rejected")
		return m.fail(a, ReasonOTPRejected, message)
	}

	if err := m.advance(a, StateVerified); err != nil {
		return a.result(ReasonNone, ""), err
	}
	if err := m.advance(a, StateCompleted); err != nil {
		return a.result(ReasonNone, ""), err
	}
	log.Info("AuthorizationMachine.Verify.completed")

	result := a.result(ReasonNone, "")
	result.Transaction = txn
	return result, nil
}

// Cancel abandons a challenged attempt. It does not wait for a verification
// in flight; that answer is discarded when it arrives.
func (m *Machine) Cancel(transactionID string) (TransitionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.attempts[transactionID]
	if !ok {
		return TransitionResult{TransactionID: transactionID}, fmt.Errorf("cancel %s: %w", transactionID, ErrUnknownTransaction)
	}
	if err := m.advance(a, StateCancelled); err != nil {
		return a.result(ReasonNone, ""), err
	}

	m.logger.WithFields(logrus.Fields{
		"attemptID":     a.id.String(),
		"transactionID": transactionID,
		"verifying":     a.verifying,
	}).Info("AuthorizationMachine.Cancel.cancelled")
	return a.result(ReasonNone, ""), nil
}

// State returns the current state of a tracked transaction.
func (m *Machine) State(transactionID string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.attempts[transactionID]
	if !ok {
		return 0, fmt.Errorf("state %s: %w", transactionID, ErrUnknownTransaction)
	}
	return a.state, nil
}

// History returns the ordered states a tracked transaction went through.
func (m *Machine) History(transactionID string) ([]State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.attempts[transactionID]
	if !ok {
		return nil, fmt.Errorf("history %s: %w", transactionID, ErrUnknownTransaction)
	}
	return slices.Clone(a.history), nil
}

// advance is the only place an attempt changes state. Callers hold m.mu for
// tracked attempts.
func (m *Machine) advance(a *attempt, to State) error {
	if !CanTransition(a.state, to) {
		return &TransitionError{Op: "advance", TransactionID: a.transactionID, From: a.state, To: to}
	}

	m.metrics.RecordTransition(a.state.String(), to.String())
	a.state = to
	a.history = append(a.history, to)
	if to.IsTerminal() {
		a.challenge = nil
		a.endedAt = m.now()
	}
	return nil
}

func (m *Machine) fail(a *attempt, reason ReasonCode, message string) (TransitionResult, error) {
	if err := m.advance(a, StateOTPFailed); err != nil {
		return a.result(ReasonNone, ""), err
	}
	return a.result(reason, message), nil
}

func (m *Machine) track(a *attempt) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if previous, ok := m.attempts[a.transactionID]; ok {
		m.logger.WithFields(logrus.Fields{
			"transactionID":     a.transactionID,
			"previousAttemptID": previous.id.String(),
			"previousState":     previous.state.String(),
		}).Warn("AuthorizationMachine.track.replaced")
	}
	m.attempts[a.transactionID] = a
	m.evict()
}

// evict drops tombstones older than the retention period, and challenges
// whose deadline passed that long ago without an answer. Callers hold m.mu.
func (m *Machine) evict() {
	cutoff := m.now().Add(-m.retention)
	for id, a := range m.attempts {
		switch {
		case a.state.IsTerminal() && a.endedAt.Before(cutoff):
		case a.state == StateOTPRequired && !a.verifying && a.challenge.Deadline.Before(cutoff):
		default:
			continue
		}
		delete(m.attempts, id)
	}
}

// BelowMinimum reports whether amount fails the policy minimum. That check
// runs before anything about the source account is looked at.
func (m *Machine) BelowMinimum(amount decimal.Decimal) bool {
	return !amount.IsPositive() || amount.LessThan(m.policy.MinimumTransferAmount)
}

func (m *Machine) validate(req InitiateRequest) (ReasonCode, string) {
	if m.BelowMinimum(req.Amount) {
		return ReasonAmountTooLow, fmt.Sprintf("the minimum transfer is %s", m.policy.MinimumTransferAmount)
	}
	if req.Amount.GreaterThan(req.From.Balance) {
		return ReasonInsufficientBalance, "the amount exceeds the available balance"
	}

	destination := strings.TrimSpace(req.ToAccountNumber)
	if destination == "" || destination == req.From.AccountNumber || destination == req.From.ID {
		return ReasonInvalidDestination, "the destination account is not valid"
	}
	if !req.From.Active {
		return ReasonAccountInactive, "the source account is not active"
	}
	return ReasonNone, ""
}

func (a *attempt) result(reason ReasonCode, message string) TransitionResult {
	result := TransitionResult{
		AttemptID:     a.id,
		TransactionID: a.transactionID,
		State:         a.state,
		Reason:        reason,
		Message:       message,
		History:       slices.Clone(a.history),
	}
	if a.challenge != nil {
		challenge := *a.challenge
		result.Challenge = &challenge
	}
	return result
}
