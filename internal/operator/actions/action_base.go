package actions

import (
	"context"

	"github.com/carson-networks/banking-core/internal/service"
)

// IAction is one network-bound unit of work run by an operator. Results are
// stored on the action itself and are readable once it has been processed.
type IAction interface {
	Name() string
	Perform(ctx context.Context, svc *service.Service) error
}
