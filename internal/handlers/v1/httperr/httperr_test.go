package httperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/banking-core/internal/domain"
	"github.com/carson-networks/banking-core/internal/sandbox"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	return statusErr.GetStatus()
}

func TestFromError_Statuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"transfer refusal", &sandbox.RejectionError{Kind: sandbox.ErrTransferRefused, Reason: "insufficient funds"}, http.StatusBadRequest},
		{"verification failure", &sandbox.RejectionError{Kind: sandbox.ErrVerificationFailed, Reason: "code expired"}, http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("transaction x: %w", domain.ErrNotFound), http.StatusNotFound},
		{"anything else", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, statusOf(t, FromError(tt.err, "failed")))
		})
	}
}

func TestFromError_ReasonIsDetail(t *testing.T) {
	err := FromError(&sandbox.RejectionError{Kind: sandbox.ErrVerificationFailed, Reason: "code mismatch"}, "failed")

	var model *huma.ErrorModel
	require.ErrorAs(t, err, &model)
	assert.Equal(t, "code mismatch", model.Detail)
}

func TestOwner(t *testing.T) {
	_, err := Owner(context.Background())
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	owner, err := Owner(sandbox.WithOwner(context.Background(), "demo-owner"))
	require.NoError(t, err)
	assert.Equal(t, "demo-owner", owner)
}
