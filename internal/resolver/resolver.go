package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/banking-core/internal/domain"
	"github.com/carson-networks/banking-core/internal/metrics"
)

// LookupFunc fetches one transaction by a single backend key. It must return
// an error matching domain.ErrNotFound when the key is unknown.
type LookupFunc func(ctx context.Context, id string) (*domain.Transaction, error)

// ResolutionError is returned when neither identifier resolved. It unwraps to
// the primary lookup failure; the secondary failure is kept for logging.
type ResolutionError struct {
	PrimaryID    string
	SecondaryID  string
	Err          error
	SecondaryErr error
}

func (e *ResolutionError) Error() string {
	if e.SecondaryErr == nil {
		return fmt.Sprintf("resolve transaction %s: %v", e.PrimaryID, e.Err)
	}
	return fmt.Sprintf("resolve transaction %s (secondary %s): %v", e.PrimaryID, e.SecondaryID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Resolver looks a transaction up by its primary key and falls back to the
// secondary key when the primary is unknown.
type Resolver struct {
	logger  *logrus.Logger
	metrics metrics.Collector
}

func NewResolver(logger *logrus.Logger, collector metrics.Collector) *Resolver {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &Resolver{logger: logger, metrics: collector}
}

// Resolve performs at most two lookups. Only a not-found primary result
// triggers the fallback; any other primary failure is returned as is.
func (r *Resolver) Resolve(ctx context.Context, primaryID, secondaryID string, lookup LookupFunc) (*domain.Transaction, error) {
	txn, err := lookup(ctx, primaryID)
	if err == nil {
		r.metrics.RecordResolution(metrics.ResolutionPrimary)
		return txn, nil
	}

	if !errors.Is(err, domain.ErrNotFound) || secondaryID == "" || secondaryID == primaryID {
		r.metrics.RecordResolution(metrics.ResolutionFailed)
		return nil, &ResolutionError{PrimaryID: primaryID, SecondaryID: secondaryID, Err: err}
	}

	r.logger.WithFields(logrus.Fields{
		"primaryID":   primaryID,
		"secondaryID": secondaryID,
	}).Debug("Resolver.Resolve.fallback")

	txn, secondaryErr := lookup(ctx, secondaryID)
	if secondaryErr == nil {
		r.metrics.RecordResolution(metrics.ResolutionSecondary)
		return txn, nil
	}

	r.logger.WithFields(logrus.Fields{
		"primaryID":      primaryID,
		"secondaryID":    secondaryID,
		"primaryError":   err.Error(),
		"secondaryError": secondaryErr.Error(),
	}).Warn("Resolver.Resolve.unresolved")

	r.metrics.RecordResolution(metrics.ResolutionFailed)
	return nil, &ResolutionError{
		PrimaryID:    primaryID,
		SecondaryID:  secondaryID,
		Err:          err,
		SecondaryErr: secondaryErr,
	}
}
