package core

import "context"

// Task is user-supplied work accepted by a TaskExecutor. Unlike a bare
// Runnable, a Task can report failure from Run and can be asked to cancel
// itself before it starts.
type Task interface {
	// Run performs the work once and reports success or failure. It is
	// invoked at most once, by the worker that dequeues the owning
	// FutureTask.
	Run(ctx context.Context) error

	// Abort is a best-effort early-cancellation request. It returns true
	// if the task accepted the abort, false if the task cannot be
	// cancelled from its current state (e.g. it is already running or
	// already finished). FutureTask may call it while Run is in progress;
	// an abort accepted before the worker starts the task means Run is
	// never invoked.
	Abort() bool
}

// Runnable is the void-returning variant of Task used directly by
// ThreadPool.Submit when no future is requested.
type Runnable interface {
	Run(ctx context.Context)
}

// RunnableFunc adapts a zero-argument callable into a Runnable.
type RunnableFunc func(ctx context.Context)

// Run invokes the wrapped function.
func (f RunnableFunc) Run(ctx context.Context) { f(ctx) }

// funcTask adapts a pair of callables — a run closure and an abort
// closure — into a Task, for TaskExecutor's closure-pair Submit variant.
// abortFunc may be nil, in which case Abort always reports false (the
// task cannot be cancelled once queued).
type funcTask struct {
	runFunc   func(ctx context.Context) error
	abortFunc func() bool
}

// NewTask adapts a run closure and an optional abort closure into a Task.
// Passing a nil abortFunc produces a Task that cannot be aborted.
func NewTask(run func(ctx context.Context) error, abort func() bool) Task {
	return &funcTask{runFunc: run, abortFunc: abort}
}

func (t *funcTask) Run(ctx context.Context) error {
	return t.runFunc(ctx)
}

func (t *funcTask) Abort() bool {
	if t.abortFunc == nil {
		return false
	}
	return t.abortFunc()
}

// runnableTask adapts a closure into a Runnable through a pointer receiver.
// FutureTask does not use it: AsRunnable returns a RunnableFunc, and the
// inner Task's result is reported through the future's own state machine.
type runnableTask struct {
	fn func(ctx context.Context)
}

func (r *runnableTask) Run(ctx context.Context) { r.fn(ctx) }
