package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned by Enqueue once the queue no longer accepts work.
var ErrStopped = errors.New("queue stopped")

// ErrFull is returned by Enqueue when the buffer has no room.
var ErrFull = errors.New("queue full")

// Handler processes one queued item.
type Handler[T any] func(context.Context, T) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

type envelope[T any] struct {
	item    T
	attempt int
}

// Queue is an in-memory worker pool. Items still buffered at Stop are processed before it returns.
type Queue[T any] struct {
	name    string
	handler Handler[T]

	maxRetries int
	retryDelay time.Duration
	workers    int
	logger     *zap.Logger

	items   chan envelope[T]
	mu      sync.RWMutex
	wg      sync.WaitGroup
	started bool
	stopped bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue[T any](name string, handler Handler[T], cfg QueueConfig) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue[T]{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		items:      make(chan envelope[T], cfg.BufferSize),
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.stopped {
		return
	}
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
	q.started = true
	q.logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.workers))
}

// Stop refuses new items, drains the buffer and waits for the workers to exit.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.started || q.stopped {
		q.stopped = true
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.items)
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue hands item to the workers without blocking.
func (q *Queue[T]) Enqueue(item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.started || q.stopped {
		return ErrStopped
	}
	select {
	case q.items <- envelope[T]{item: item}:
		return nil
	default:
		return ErrFull
	}
}

func (q *Queue[T]) worker(ctx context.Context) {
	defer q.wg.Done()
	for env := range q.items {
		q.process(ctx, env)
	}
}

// process runs the handler inline, retrying after RetryDelay up to MaxRetries times.
func (q *Queue[T]) process(ctx context.Context, env envelope[T]) {
	for {
		err := q.handler(ctx, env.item)
		if err == nil {
			return
		}
		env.attempt++
		if env.attempt > q.maxRetries {
			q.logger.Error("job exceeded retries", zap.String("queue", q.name), zap.Int("attempts", env.attempt), zap.Error(err))
			return
		}
		q.logger.Warn("job failed, retrying", zap.String("queue", q.name), zap.Int("attempt", env.attempt), zap.Error(err))

		timer := time.NewTimer(q.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
