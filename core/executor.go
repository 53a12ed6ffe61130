package core

import (
	"context"
	"time"
)

// TaskExecutor pairs a ThreadPool with a FutureTask factory, offering a
// futures-returning submit API on top of the pool's plain Runnable
// interface.
type TaskExecutor struct {
	pool *ThreadPool
}

// NewTaskExecutor builds a ThreadPool(name, min, max) and wraps it in a
// TaskExecutor, or returns the error if pool initialization failed.
func NewTaskExecutor(name string, minThreads, maxThreads int) (*TaskExecutor, error) {
	b := NewBuilder(name)
	b.MinThreads = minThreads
	b.MaxThreads = maxThreads
	pool, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &TaskExecutor{pool: pool}, nil
}

// NewTaskExecutorSimple is NewTaskExecutor with minThreads = 0.
func NewTaskExecutorSimple(name string, maxThreads int) (*TaskExecutor, error) {
	return NewTaskExecutor(name, 0, maxThreads)
}

// NewTaskExecutorFromBuilder wraps an already-configured Builder, for
// callers who need to set IdleTimeout, MaxQueueSize, or Config explicitly.
func NewTaskExecutorFromBuilder(b *Builder) (*TaskExecutor, error) {
	pool, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &TaskExecutor{pool: pool}, nil
}

// Pool returns the underlying ThreadPool, for callers that need direct
// access to Stats or other pool-level operations.
func (e *TaskExecutor) Pool() *ThreadPool {
	return e.pool
}

// Submit wraps task in a FutureTask, enqueues it on the pool, and returns
// the future handle. The task's Abort is wired as the future's abort
// protocol.
func (e *TaskExecutor) Submit(ctx context.Context, task Task) (*FutureTask, error) {
	future := NewFutureTask(task)
	if err := e.pool.Submit(ctx, future.AsRunnable()); err != nil {
		return nil, err
	}
	return future, nil
}

// SubmitFunc adapts a bare run closure into a Task with no abort support
// and submits it. Calling Abort on the returned future always reports
// false.
func (e *TaskExecutor) SubmitFunc(ctx context.Context, run func(ctx context.Context) error) (*FutureTask, error) {
	return e.Submit(ctx, NewTask(run, nil))
}

// SubmitFuncWithAbort adapts a pair of closures — a run closure and an
// abort closure — into a Task and submits it.
func (e *TaskExecutor) SubmitFuncWithAbort(ctx context.Context, run func(ctx context.Context) error, abort func() bool) (*FutureTask, error) {
	return e.Submit(ctx, NewTask(run, abort))
}

// Wait blocks until the underlying pool is idle (queue empty, no active
// worker).
func (e *TaskExecutor) Wait() {
	e.pool.Wait()
}

// TimedWait is the bounded variant of Wait.
func (e *TaskExecutor) TimedWait(deadline time.Time) bool {
	return e.pool.TimedWait(deadline)
}

// Shutdown forwards to the underlying pool's Shutdown.
func (e *TaskExecutor) Shutdown() {
	e.pool.Shutdown()
}
