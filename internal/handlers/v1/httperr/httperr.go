package httperr

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/banking-core/internal/domain"
	"github.com/carson-networks/banking-core/internal/sandbox"
)

// Owner returns the authenticated owner or a 401.
func Owner(ctx context.Context) (string, error) {
	ownerID, ok := sandbox.OwnerFromContext(ctx)
	if !ok {
		return "", huma.NewError(http.StatusUnauthorized, "missing bearer token", sandbox.ErrUnauthenticated)
	}
	return ownerID, nil
}

// FromError maps a sandbox error to the response the client expects.
// Refusals carry their reason verbatim as the problem detail.
func FromError(err error, msg string) error {
	var rejection *sandbox.RejectionError
	switch {
	case errors.As(err, &rejection) && errors.Is(err, sandbox.ErrVerificationFailed):
		return huma.NewError(http.StatusUnprocessableEntity, rejection.Reason)
	case errors.As(err, &rejection):
		return huma.NewError(http.StatusBadRequest, rejection.Reason)
	case errors.Is(err, domain.ErrNotFound):
		return huma.NewError(http.StatusNotFound, "not found")
	default:
		return huma.NewError(http.StatusInternalServerError, msg, err)
	}
}
