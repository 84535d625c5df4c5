package backend

import (
	"errors"
	"fmt"
)

// ErrTransport matches every failure where the backend could not give a
// business answer: network errors, timeouts, 5xx responses, malformed bodies
// and an open circuit.
var ErrTransport = errors.New("backend unreachable")

// TransportError carries the operation that failed and the underlying cause.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// RejectedError is a business refusal from the backend. Reason is the
// backend's text verbatim.
type RejectedError struct {
	Op     string
	Status int
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("backend %s rejected (%d): %s", e.Op, e.Status, e.Reason)
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// RejectionReason returns the backend's reason when err is a rejection.
func RejectionReason(err error) (string, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason, true
	}
	return "", false
}
