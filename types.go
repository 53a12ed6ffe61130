package workerpool

import "github.com/corvidlabs/workerpool/core"

// Re-export commonly used types from the core package for convenience. This
// allows callers to import only the workerpool package for most use cases,
// while observability/prometheus and cmd/poolctl reach into core directly
// for the lower-level collaborator hooks.

// Task is user-supplied work accepted by a TaskExecutor.
type Task = core.Task

// Runnable is the void-returning variant of Task used directly by
// ThreadPool.Submit.
type Runnable = core.Runnable

// RunnableFunc adapts a closure into a Runnable.
type RunnableFunc = core.RunnableFunc

// ThreadPool is a bounded, elastically-sized pool of worker goroutines.
type ThreadPool = core.ThreadPool

// PoolState is a ThreadPool's lifecycle state.
type PoolState = core.PoolState

// Builder captures the tunables for a ThreadPool and produces it via Build.
type Builder = core.Builder

// FutureTask wraps a Task with a four-state lifecycle, a completion latch,
// and listener registration.
type FutureTask = core.FutureTask

// FutureState is a FutureTask's lifecycle state.
type FutureState = core.FutureState

// Listener is a completion callback registered on a FutureTask.
type Listener = core.Listener

// ListenerFuncs adapts a pair of closures into a Listener.
type ListenerFuncs = core.ListenerFuncs

// TaskExecutor pairs a ThreadPool with a FutureTask factory.
type TaskExecutor = core.TaskExecutor

// TraceContext is an opaque, refcounted diagnostic handle carried with
// queued work.
type TraceContext = core.TraceContext

// PoolStats is a point-in-time snapshot of a ThreadPool's runtime state.
type PoolStats = core.PoolStats

// FutureStats is a point-in-time snapshot of a FutureTask's state.
type FutureStats = core.FutureStats

// Logger, Field, Metrics and friends are re-exported so collaborators that
// only need the ambient hooks don't need to import core directly.
type Logger = core.Logger
type Field = core.Field
type Metrics = core.Metrics
type PanicHandler = core.PanicHandler
type RejectedTaskHandler = core.RejectedTaskHandler
type ThreadPoolConfig = core.ThreadPoolConfig

// FutureTask lifecycle state constants.
const (
	Pending  FutureState = core.Pending
	Running  FutureState = core.Running
	Finished FutureState = core.Finished
	Aborted  FutureState = core.Aborted
)

// ThreadPool lifecycle state constants.
const (
	StateUninitialized PoolState = core.StateUninitialized
	StateRunning       PoolState = core.StateRunning
	StateShutDown      PoolState = core.StateShutDown
)

// F creates a new structured-logging Field.
var F = core.F

// NewBuilder returns a Builder pre-populated with spec defaults for name.
var NewBuilder = core.NewBuilder

// NewTask adapts a run closure and an optional abort closure into a Task.
var NewTask = core.NewTask

// NewFutureTask wraps task in a FutureTask in the Pending state.
var NewFutureTask = core.NewFutureTask

// NewTaskExecutor builds a ThreadPool(name, min, max) wrapped in a
// TaskExecutor.
var NewTaskExecutor = core.NewTaskExecutor

// NewTaskExecutorSimple is NewTaskExecutor with minThreads = 0.
var NewTaskExecutorSimple = core.NewTaskExecutorSimple

// NewTaskExecutorFromBuilder wraps an already-configured Builder.
var NewTaskExecutorFromBuilder = core.NewTaskExecutorFromBuilder

// NewTraceContext creates a fresh trace context with a zero refcount.
var NewTraceContext = core.NewTraceContext

// WithTraceContext returns a copy of ctx with tc installed as current.
var WithTraceContext = core.WithTraceContext

// CurrentTraceContext returns the trace context installed on ctx, if any.
var CurrentTraceContext = core.CurrentTraceContext

// NewDefaultLogger returns a Logger backed by the standard log package.
var NewDefaultLogger = core.NewDefaultLogger

// NewNoOpLogger returns a Logger that discards everything.
var NewNoOpLogger = core.NewNoOpLogger

// DefaultThreadPoolConfig returns a config with every hook set to its
// no-op/default implementation.
var DefaultThreadPoolConfig = core.DefaultThreadPoolConfig

// Sentinel errors from the pool/future error taxonomy.
var (
	ErrUninitialized  = core.ErrUninitialized
	ErrNotSupported   = core.ErrNotSupported
	ErrPoolNotRunning = core.ErrPoolNotRunning
	ErrQueueFull      = core.ErrQueueFull
	ErrSpawnFailed    = core.ErrSpawnFailed
	ErrAborted        = core.ErrAborted
)
