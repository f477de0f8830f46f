package latent

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Pool runs submitted work off the calling goroutine with at most maxWorkers running at once.
// Work submitted while every slot is busy waits for a slot instead of being dropped.
type Pool struct {
	logger zerolog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	workerPool chan struct{}

	maxWorkers int
}

// NewPool creates a pool bounded to maxWorkers concurrent jobs
func NewPool(maxWorkers int, logger zerolog.Logger) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		workerPool: make(chan struct{}, maxWorkers),
		maxWorkers: maxWorkers,
	}
}

// Submit queues fn and returns immediately.
// After Stop, queued work still runs once, with an already cancelled context.
func (slf *Pool) Submit(fn func(ctx context.Context)) {
	slf.wg.Add(1)
	go func() {
		defer slf.wg.Done()

		select {
		case slf.workerPool <- struct{}{}:
			defer func() { <-slf.workerPool }()
		case <-slf.ctx.Done():
			slf.logger.Warn().Msg("Pool stopped before job could acquire a worker slot")
		}
		fn(slf.ctx)
	}()
}

// MaxWorkers returns the concurrency bound
func (slf *Pool) MaxWorkers() int {
	return slf.maxWorkers
}

// Stop cancels the shared context and waits for every submitted job to return
func (slf *Pool) Stop() {
	slf.logger.Info().Msg("Stopping worker pool")
	slf.cancel()
	slf.wg.Wait()
	slf.logger.Info().Msg("Worker pool stopped")
}
