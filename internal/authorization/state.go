package authorization

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/banking-core/internal/domain"
)

// State is a step of a transfer authorization attempt.
type State int8

const (
	StateInitiated State = iota
	StateValidated
	StateRejected
	StateOTPRequired
	StateVerified
	StateCompleted
	StateOTPFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateInitiated:
		return "INITIATED"
	case StateValidated:
		return "VALIDATED"
	case StateRejected:
		return "REJECTED"
	case StateOTPRequired:
		return "OTP_REQUIRED"
	case StateVerified:
		return "VERIFIED"
	case StateCompleted:
		return "COMPLETED"
	case StateOTPFailed:
		return "OTP_FAILED"
	case StateCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("State(%d)", int8(s))
	}
}

// IsTerminal reports whether the attempt can no longer change.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateRejected, StateOTPFailed, StateCancelled:
		return true
	default:
		return false
	}
}

var transitions = map[State][]State{
	StateInitiated:   {StateValidated, StateRejected},
	StateValidated:   {StateOTPRequired, StateCompleted},
	StateOTPRequired: {StateVerified, StateOTPFailed, StateCancelled},
	StateVerified:    {StateCompleted},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ReasonCode explains a rejection or failure to the UI.
type ReasonCode string

const (
	ReasonNone                ReasonCode = ""
	ReasonAmountTooLow        ReasonCode = "AMOUNT_TOO_LOW"
	ReasonInsufficientBalance ReasonCode = "INSUFFICIENT_BALANCE"
	ReasonInvalidDestination  ReasonCode = "INVALID_DESTINATION"
	ReasonAccountInactive     ReasonCode = "ACCOUNT_INACTIVE"
	ReasonBackendRejected     ReasonCode = "BACKEND_REJECTED"
	ReasonEmptyCode           ReasonCode = "EMPTY_CODE"
	ReasonChallengeExpired    ReasonCode = "CHALLENGE_EXPIRED"
	ReasonTooManyAttempts     ReasonCode = "TOO_MANY_ATTEMPTS"
	ReasonOTPRejected         ReasonCode = "OTP_REJECTED"
)

// AuthorizationContext is the OTP challenge owned by one attempt. It exists
// from the step-up request until the attempt reaches a terminal state.
type AuthorizationContext struct {
	TransactionID    string
	ChallengeMessage string
	RetryCount       int
	Deadline         time.Time
}

// TransitionResult is what the UI sees after every operation.
type TransitionResult struct {
	AttemptID     uuid.UUID
	TransactionID string
	State         State
	Reason        ReasonCode
	Message       string
	Transaction   *domain.Transaction
	Challenge     *AuthorizationContext
	History       []State
	// Discarded is set when a verification answer arrived after the
	// attempt had already been cancelled.
	Discarded bool
}
