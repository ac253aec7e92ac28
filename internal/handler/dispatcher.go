package handler

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
	"github.com/noah-isme/linguasaurus-bot/internal/middleware"
)

const defaultStripeBuffer = 32

// Dispatcher fans updates out to a fixed set of workers. Updates of one actor
// always land on the same worker, so they are handled in arrival order.
type Dispatcher struct {
	handle  middleware.UpdateHandler
	stripes []chan dto.Update
	logger  *zap.Logger
}

// NewDispatcher constructs a Dispatcher with the given number of workers.
func NewDispatcher(workers int, handle middleware.UpdateHandler, logger *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	stripes := make([]chan dto.Update, workers)
	for i := range stripes {
		stripes[i] = make(chan dto.Update, defaultStripeBuffer)
	}
	return &Dispatcher{handle: handle, stripes: stripes, logger: logger}
}

// Run consumes updates until the channel is closed, then waits for queued updates
// to finish. In-flight handlers are not cancelled when ctx is.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan dto.Update) {
	workCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for _, stripe := range d.stripes {
		wg.Add(1)
		go func(in <-chan dto.Update) {
			defer wg.Done()
			for update := range in {
				// errors are already reported and logged by the pipeline
				_ = d.handle(workCtx, update)
			}
		}(stripe)
	}

	for update := range updates {
		d.stripes[d.stripeFor(update.Actor.ID)] <- update
	}
	for _, stripe := range d.stripes {
		close(stripe)
	}
	wg.Wait()
	d.logger.Info("dispatcher drained", zap.Int("workers", len(d.stripes)))
}

func (d *Dispatcher) stripeFor(actorID int64) int {
	n := int64(len(d.stripes))
	idx := actorID % n
	if idx < 0 {
		idx += n
	}
	return int(idx)
}
