package sandbox

import "errors"

var (
	ErrTransferRefused    = errors.New("transfer refused")
	ErrVerificationFailed = errors.New("verification failed")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("missing owner")
)

// RejectionError is a business refusal whose Reason is shown to the caller
// as is. Kind is one of ErrTransferRefused or ErrVerificationFailed.
type RejectionError struct {
	Kind   error
	Reason string
}

func (e *RejectionError) Error() string {
	return e.Reason
}

func (e *RejectionError) Unwrap() error {
	return e.Kind
}

func refuseTransfer(reason string) error {
	return &RejectionError{Kind: ErrTransferRefused, Reason: reason}
}

func failVerification(reason string) error {
	return &RejectionError{Kind: ErrVerificationFailed, Reason: reason}
}
