package operator

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/banking-core/internal/operator/actions"
	"github.com/carson-networks/banking-core/internal/service"
)

var ErrStopped = errors.New("operator: stopped")

const queueSize = 1000

// OperatorDelegator manages the queue, starts/stops Operators (workers), and enqueues items.
type OperatorDelegator struct {
	service    *service.Service
	logger     *logrus.Logger
	queue      chan ActionItem
	numWorkers int
	wg         sync.WaitGroup
	stopOnce   sync.Once

	// mu guards stopped so nothing is sent on a closed queue.
	mu      sync.RWMutex
	stopped bool
}

func NewOperatorDelegator(svc *service.Service, numWorkers int, logger *logrus.Logger) *OperatorDelegator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &OperatorDelegator{
		service:    svc,
		logger:     logger,
		queue:      make(chan ActionItem, queueSize),
		numWorkers: numWorkers,
	}
}

func (d *OperatorDelegator) Start() {
	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		op := NewOperator(d.service, d.queue, d.logger)
		go func() {
			defer d.wg.Done()
			op.Run()
		}()
	}
	d.logger.WithField("workers", d.numWorkers).Debug("OperatorDelegator.Start.started")
}

// Stop drains the queue and waits for the workers to finish.
func (d *OperatorDelegator) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		close(d.queue)
		d.mu.Unlock()

		d.wg.Wait()
		d.logger.Debug("OperatorDelegator.Stop.stopped")
	})
}

// Submit enqueues action and returns a channel that receives its error once
// it has run. The action's result fields are safe to read after that.
func (d *OperatorDelegator) Submit(ctx context.Context, action actions.IAction) (<-chan error, error) {
	respCh := make(chan error, 1)
	item := ActionItem{
		ctx:      ctx,
		action:   action,
		response: respCh,
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return nil, ErrStopped
	}

	select {
	case d.queue <- item:
		return respCh, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Process runs action and waits for it, or for ctx to end.
func (d *OperatorDelegator) Process(ctx context.Context, action actions.IAction) error {
	respCh, err := d.Submit(ctx, action)
	if err != nil {
		return err
	}

	select {
	case err := <-respCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
