package metrics

import (
	"time"
)

// Collector receives events from the authorization machine, the backend
// client and the transaction resolver.
type Collector interface {
	// Authorization
	RecordTransition(from, to string)

	// Backend client
	RecordBackendCall(operation string, outcome Outcome, duration time.Duration)
	RecordCircuitState(name string, state CircuitState)

	// Resolver
	RecordResolution(outcome Resolution)
}

// Outcome classifies a backend call.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeRejected  Outcome = "rejected"
	OutcomeTransport Outcome = "transport"
)

// Resolution tells which identifier found the transaction, if any.
type Resolution string

const (
	ResolutionPrimary   Resolution = "primary"
	ResolutionSecondary Resolution = "secondary"
	ResolutionFailed    Resolution = "failed"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOpCollector is the collector used when nothing is configured.
type NoOpCollector struct{}

func (NoOpCollector) RecordTransition(from, to string) {}

func (NoOpCollector) RecordBackendCall(operation string, outcome Outcome, duration time.Duration) {}

func (NoOpCollector) RecordCircuitState(name string, state CircuitState) {}

func (NoOpCollector) RecordResolution(outcome Resolution) {}
