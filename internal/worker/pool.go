package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull is returned when the task queue has no free slot.
var ErrQueueFull = errors.New("worker queue is full")

// ErrStopped is returned when submitting to a stopped pool.
var ErrStopped = errors.New("worker pool is stopped")

// ErrShutdownTimeout is returned when workers don't stop within timeout.
var ErrShutdownTimeout = errors.New("worker pool shutdown timed out")

// Pool executes blocking tasks on a bounded set of workers so slow
// retrievals never serialize the bot's dispatch loop.
type Pool struct {
	workers int
	tasks   chan func()
	logger  *slog.Logger

	mu      sync.Mutex
	stopped bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Config holds worker pool configuration.
type Config struct {
	Workers   int
	QueueSize int
}

// NewPool creates a new worker pool.
func NewPool(cfg Config, logger *slog.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers: cfg.Workers,
		tasks:   make(chan func(), cfg.QueueSize),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches all workers.
func (p *Pool) Start() {
	p.logger.Info("starting worker pool", "workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit queues a task for execution. It never blocks: a saturated queue
// returns ErrQueueFull so the caller can report back instead of piling up.
// The enqueue happens under the same lock as the stopped check, so a task
// accepted here is always drained by a worker even when Stop races it.
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrStopped
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop gracefully stops all workers, letting in-flight tasks finish.
func (p *Pool) Stop(timeout time.Duration) error {
	p.logger.Info("stopping worker pool")

	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped gracefully")
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Info("worker started")

	for {
		select {
		case <-p.ctx.Done():
			// Drain whatever is already queued before exiting.
			for {
				select {
				case task := <-p.tasks:
					p.runTask(logger, task)
				default:
					logger.Info("worker stopping")
					return
				}
			}
		case task := <-p.tasks:
			p.runTask(logger, task)
		}
	}
}

// runTask executes one task, containing any panic so a single bad request
// never takes down the pool.
func (p *Pool) runTask(logger *slog.Logger, task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("task panicked", "panic", r)
		}
	}()
	task()
}
