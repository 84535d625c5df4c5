package authorization

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalTransition  = errors.New("illegal state transition")
	ErrUnknownTransaction = errors.New("unknown transaction")
	ErrVerifyInFlight     = errors.New("verification already in flight")
)

// TransitionError reports an operation that is not legal from the attempt's
// current state. It matches ErrIllegalTransition.
type TransitionError struct {
	Op            string
	TransactionID string
	From          State
	To            State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s: cannot move from %s to %s", e.Op, e.TransactionID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}
