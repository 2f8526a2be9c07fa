package future

import (
	"sync"

	"tc.com/best-prices/pkg/logging"
	"tc.com/best-prices/pkg/metrics"
)

const (
	// DefaultQueueSize is the task queue capacity when none is configured.
	DefaultQueueSize = 256
)

// Pool is a bounded worker pool. Workers are plain goroutines, so a pool that
// is still executing tasks never blocks process exit. Submit is safe for
// concurrent use from multiple aggregation calls.
type Pool struct {
	tasks   chan func()
	workers int
	logger  *logging.Logger

	mu     sync.RWMutex
	closed bool
}

// Ensure Pool implements Executor interface.
var _ Executor = (*Pool)(nil)

// PoolOption configures a Pool.
type PoolOption func(*poolOptions)

type poolOptions struct {
	queueSize int
	logger    *logging.Logger
}

// WithQueueSize sets the task queue capacity.
func WithQueueSize(n int) PoolOption {
	return func(o *poolOptions) {
		o.queueSize = n
	}
}

// WithPoolLogger sets the logger used for worker diagnostics.
func WithPoolLogger(logger *logging.Logger) PoolOption {
	return func(o *poolOptions) {
		o.logger = logger
	}
}

// NewPool creates a pool with the given number of workers and starts them.
func NewPool(workers int, opts ...PoolOption) *Pool {
	options := poolOptions{
		queueSize: DefaultQueueSize,
		logger:    logging.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	if workers < 1 {
		workers = 1
	}

	p := &Pool{
		tasks:   make(chan func(), options.queueSize),
		workers: workers,
		logger:  options.logger,
	}
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	metrics.SetPoolWorkers(workers)
	return p
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Submit queues a task for execution. It returns ErrPoolClosed after Close
// and ErrQueueFull when the queue is at capacity.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		metrics.RecordPoolTask()
		return nil
	default:
		return ErrQueueFull
	}
}

// Execute implements Executor.
func (p *Pool) Execute(task func()) error {
	return p.Submit(task)
}

// Close stops accepting tasks. Queued tasks still run; workers exit once the
// queue drains.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.tasks)
}

func (p *Pool) worker() {
	for task := range p.tasks {
		p.runTask(task)
	}
}

// runTask recovers panics so a misbehaving task cannot kill the worker.
func (p *Pool) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Pool task panicked", "panic", r)
		}
	}()
	task()
}
