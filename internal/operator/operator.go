package operator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/banking-core/internal/operator/actions"
	"github.com/carson-networks/banking-core/internal/service"
)

// Operator is the worker that processes items from the queue.
type Operator struct {
	service *service.Service
	queue   chan ActionItem
	logger  *logrus.Logger
}

func NewOperator(svc *service.Service, queue chan ActionItem, logger *logrus.Logger) *Operator {
	return &Operator{
		service: svc,
		queue:   queue,
		logger:  logger,
	}
}

// Run listens to the queue and processes items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		o.processItem(item)
	}
}

func (o *Operator) processItem(item ActionItem) {
	// The caller gave up while the item was queued.
	if err := item.ctx.Err(); err != nil {
		item.response <- err
		return
	}

	start := time.Now()
	err := item.action.Perform(item.ctx, o.service)

	entry := o.logger.WithFields(logrus.Fields{
		"action":     item.action.Name(),
		"durationMs": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Debug("Operator.Perform.error")
	} else {
		entry.Debug("Operator.Perform.complete")
	}

	item.response <- err
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan error
}
